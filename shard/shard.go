// Package shard batches finished episodes and persists them as npz shards
// whose filenames carry the seed, the episode index range and the step
// count. A directory of shards is the run's durable state: counters resume
// from the filenames alone.
package shard

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/grid-rl/trajgen/npz"
	"github.com/grid-rl/trajgen/types"
	"github.com/grid-rl/trajgen/util"
)

// RunCounters are the process-wide step and episode totals, threaded
// explicitly through the generator and the buffer.
type RunCounters struct {
	Steps    int
	Episodes int
}

// Buffer accumulates completed episodes pending a flush.
type Buffer struct {
	episodes []types.Episode
}

func NewBuffer() *Buffer {
	return &Buffer{episodes: make([]types.Episode, 0)}
}

// Add appends a completed episode. The buffer takes ownership.
func (b *Buffer) Add(e types.Episode) {
	b.episodes = append(b.episodes, e)
}

// Episodes is the number of buffered episodes.
func (b *Buffer) Episodes() int {
	return len(b.episodes)
}

// Steps is the total steps buffered; each episode's reset row carries no
// action, so an episode contributes len-1.
func (b *Buffer) Steps() int {
	steps := 0
	for _, e := range b.episodes {
		steps += types.EpisodeSteps(e)
	}
	return steps
}

// Flush concatenates every buffered episode field-wise, transposes the image
// batch for better compression, writes one shard and clears the buffer.
// totalEpisodes is the run's running episode count including the buffered
// ones; it anchors the filename's index range. Returns the shard filename.
func (b *Buffer) Flush(dir string, seed int, totalEpisodes int) (string, error) {
	if len(b.episodes) == 0 {
		return "", fmt.Errorf("shard: flush of empty buffer")
	}
	steps := b.Steps()
	count := len(b.episodes)

	combined := make(map[string]types.Tensor, len(b.episodes[0]))
	for key := range b.episodes[0] {
		parts := make([]types.Tensor, 0, count)
		for _, e := range b.episodes {
			t, ok := e[key]
			if !ok {
				return "", fmt.Errorf("shard: episode missing field %s", key)
			}
			parts = append(parts, t)
		}
		t, err := types.Concat(parts)
		if err != nil {
			return "", fmt.Errorf("shard: field %s: %w", key, err)
		}
		combined[key] = t
	}

	// NHWC => HWCN, the trailing episode axis compresses better
	if image, ok := combined["image"]; ok {
		combined["image_t"] = image.TransposeToLast()
		delete(combined, "image")
	}

	name := Filename(seed, totalEpisodes-count, totalEpisodes-1, steps)
	err := util.WriteFileAtomic(filepath.Join(dir, name), func(w io.Writer) error {
		return npz.Write(w, combined)
	})
	if err != nil {
		return "", err
	}
	b.episodes = b.episodes[:0]
	return name, nil
}

// Filename encodes seed, inclusive episode range and step count, e.g.
// s0-ep000012_000015-2048.npz. Single-episode shards collapse the range.
func Filename(seed, firstEpisode, lastEpisode, steps int) string {
	if firstEpisode == lastEpisode {
		return fmt.Sprintf("s%d-ep%06d-%04d.npz", seed, lastEpisode, steps)
	}
	return fmt.Sprintf("s%d-ep%06d_%06d-%04d.npz", seed, firstEpisode, lastEpisode, steps)
}

// CountSteps scans dir for shard files and rebuilds the run counters: steps
// as the sum of the trailing step tokens, episodes as one past the largest
// episode index. Tokens that do not parse are skipped. A missing directory
// counts as empty.
func CountSteps(dir string) (RunCounters, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return RunCounters{}, nil
		}
		return RunCounters{}, err
	}

	var counters RunCounters
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".npz") {
			continue
		}
		// e.g. s1-ep000000_000003-1500.npz
		stem := strings.SplitN(name, ".", 2)[0]
		tokens := strings.Split(stem, "-")
		if len(tokens) < 2 {
			continue
		}
		if steps, err := strconv.Atoi(tokens[len(tokens)-1]); err == nil {
			counters.Steps += steps
		}
		epToken := strings.TrimPrefix(tokens[len(tokens)-2], "ep")
		epParts := strings.Split(epToken, "_")
		if ep, err := strconv.Atoi(epParts[len(epParts)-1]); err == nil && ep+1 > counters.Episodes {
			counters.Episodes = ep + 1
		}
	}
	return counters, nil
}
