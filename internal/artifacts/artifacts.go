// Package artifacts reads and writes the per-video intermediate files of the
// extraction pipeline: one JSON file per step and the extracted frames.
//
//	<root>/<video_id>/metadata.json
//	<root>/<video_id>/transcript.json
//	<root>/<video_id>/recipe.json
//	<root>/<video_id>/timestamps.json
//	<root>/<video_id>/frames/step_<name>.jpg
//
// Writers of one video hold an exclusive file lock, readers a shared one, so
// several processes may use the same cache root.
package artifacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/eladw917/cookbook-creator/internal/recipe"
	"github.com/gofrs/flock"
)

// Pipeline steps with a JSON artifact.
const (
	StepMetadata   = "metadata"
	StepTranscript = "transcript"
	StepRecipe     = "recipe"
	StepTimestamps = "timestamps"
	// StepFrames names the frames directory in Status and ClearStep.
	StepFrames = "frames"

	// HeroFrame is the frame showing the finished dish.
	HeroFrame = "dish_visual"
)

// Steps lists the JSON steps in pipeline order.
var Steps = []string{StepMetadata, StepTranscript, StepRecipe, StepTimestamps}

const lockRetry = 25 * time.Millisecond

var (
	// ErrNotFound is returned for steps and frames that were never saved.
	ErrNotFound = errors.New("artifact not cached")
	// ErrInvalidName is returned for video ids, steps and frame names that
	// are not plain path segments.
	ErrInvalidName = errors.New("invalid artifact name")

	validName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// Cache is a cache root directory.
type Cache struct {
	root string
}

// Status reports which pipeline outputs exist for a video.
type Status map[string]bool

// Video is one cached video.
type Video struct {
	ID     string
	Title  string
	Status Status
}

// Metadata is the subset of the metadata step the cookbook uses.
type Metadata struct {
	Title     string `json:"title"`
	Channel   string `json:"channel"`
	URL       string `json:"video_url"`
	Thumbnail string `json:"thumbnail_url"`
}

// New returns a cache rooted at root. The directory is created on first
// write.
func New(root string) *Cache {
	return &Cache{root: root}
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

// Dir returns the directory of one video.
func (c *Cache) Dir(videoID string) string {
	return filepath.Join(c.root, videoID)
}

func (c *Cache) lockPath(videoID string) string {
	return filepath.Join(c.root, ".locks", videoID+".lock")
}

func checkName(kind, name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: %s %q", ErrInvalidName, kind, name)
	}
	return nil
}

// withLock runs fn holding the video's lock, exclusive when write is set.
func (c *Cache) withLock(ctx context.Context, videoID string, write bool, fn func() error) error {
	if err := checkName("video id", videoID); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.lockPath(videoID)), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(c.lockPath(videoID))
	defer lock.Close()

	var (
		ok  bool
		err error
	)
	if write {
		ok, err = lock.TryLockContext(ctx, lockRetry)
	} else {
		ok, err = lock.TryRLockContext(ctx, lockRetry)
	}
	if err != nil {
		return fmt.Errorf("lock video %s: %w", videoID, err)
	}
	if !ok {
		return fmt.Errorf("lock video %s: not acquired", videoID)
	}
	defer func() { _ = lock.Unlock() }()
	return fn()
}

// SaveStep writes v as indented JSON for a step.
func (c *Cache) SaveStep(ctx context.Context, videoID, step string, v any) error {
	if err := checkName("step", step); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", step, err)
	}
	return c.withLock(ctx, videoID, true, func() error {
		return writeFile(filepath.Join(c.Dir(videoID), step+".json"), data)
	})
}

// LoadStep decodes a step's JSON into v.
func (c *Cache) LoadStep(ctx context.Context, videoID, step string, v any) error {
	if err := checkName("step", step); err != nil {
		return err
	}
	return c.withLock(ctx, videoID, false, func() error {
		data, err := os.ReadFile(filepath.Join(c.Dir(videoID), step+".json"))
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, videoID, step)
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", step, err)
		}
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decode %s: %w", step, err)
		}
		return nil
	})
}

// FramePath returns where a frame is stored.
func (c *Cache) FramePath(videoID, name string) string {
	return filepath.Join(c.Dir(videoID), StepFrames, "step_"+name+".jpg")
}

// SaveFrame stores a JPEG frame and returns its path.
func (c *Cache) SaveFrame(ctx context.Context, videoID, name string, data []byte) (string, error) {
	if err := checkName("frame", name); err != nil {
		return "", err
	}
	path := c.FramePath(videoID, name)
	err := c.withLock(ctx, videoID, true, func() error {
		return writeFile(path, data)
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// LoadFrame reads a stored frame.
func (c *Cache) LoadFrame(ctx context.Context, videoID, name string) ([]byte, error) {
	if err := checkName("frame", name); err != nil {
		return nil, err
	}
	var data []byte
	err := c.withLock(ctx, videoID, false, func() error {
		var err error
		data, err = os.ReadFile(c.FramePath(videoID, name))
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s frame %s", ErrNotFound, videoID, name)
		}
		return err
	})
	return data, err
}

// HeroImage returns the path of the finished-dish frame when it exists.
func (c *Cache) HeroImage(videoID string) (string, bool) {
	if checkName("video id", videoID) != nil {
		return "", false
	}
	path := c.FramePath(videoID, HeroFrame)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return "", false
	}
	return path, true
}

// Status reports which steps and frames exist for a video.
func (c *Cache) Status(ctx context.Context, videoID string) (Status, error) {
	status := make(Status, len(Steps)+1)
	err := c.withLock(ctx, videoID, false, func() error {
		dir := c.Dir(videoID)
		for _, step := range Steps {
			_, err := os.Stat(filepath.Join(dir, step+".json"))
			status[step] = err == nil
		}
		frames, _ := filepath.Glob(filepath.Join(dir, StepFrames, "*.jpg"))
		status[StepFrames] = len(frames) > 0
		return nil
	})
	return status, err
}

// Clear removes everything cached for a video.
func (c *Cache) Clear(ctx context.Context, videoID string) error {
	return c.withLock(ctx, videoID, true, func() error {
		if err := os.RemoveAll(c.Dir(videoID)); err != nil {
			return fmt.Errorf("clear %s: %w", videoID, err)
		}
		return nil
	})
}

// ClearStep removes one step's output; StepFrames removes every frame.
func (c *Cache) ClearStep(ctx context.Context, videoID, step string) error {
	if err := checkName("step", step); err != nil {
		return err
	}
	return c.withLock(ctx, videoID, true, func() error {
		var err error
		if step == StepFrames {
			err = os.RemoveAll(filepath.Join(c.Dir(videoID), StepFrames))
		} else {
			err = os.Remove(filepath.Join(c.Dir(videoID), step+".json"))
			if errors.Is(err, fs.ErrNotExist) {
				err = nil
			}
		}
		if err != nil {
			return fmt.Errorf("clear %s/%s: %w", videoID, step, err)
		}
		return nil
	})
}

// List returns every cached video in id order. The title comes from the
// metadata step, falling back to the recipe title.
func (c *Cache) List(ctx context.Context) ([]Video, error) {
	entries, err := os.ReadDir(c.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list cache: %w", err)
	}

	var out []Video
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") || checkName("video id", e.Name()) != nil {
			continue
		}
		id := e.Name()
		status, err := c.Status(ctx, id)
		if err != nil {
			return nil, err
		}
		v := Video{ID: id, Title: "Unknown", Status: status}
		var meta Metadata
		if err := c.LoadStep(ctx, id, StepMetadata, &meta); err == nil && meta.Title != "" {
			v.Title = meta.Title
		} else {
			var r recipe.Recipe
			if err := c.LoadStep(ctx, id, StepRecipe, &r); err == nil && r.Title != "" {
				v.Title = r.Title
			}
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// LoadRecipe assembles a renderable recipe from the recipe step, the
// metadata step when present and the hero frame when present.
func (c *Cache) LoadRecipe(ctx context.Context, videoID string) (*recipe.Recipe, error) {
	var r recipe.Recipe
	if err := c.LoadStep(ctx, videoID, StepRecipe, &r); err != nil {
		return nil, err
	}
	var meta Metadata
	if err := c.LoadStep(ctx, videoID, StepMetadata, &meta); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	r.VideoID = videoID
	if r.Title == "" {
		r.Title = meta.Title
	}
	if r.Channel == "" {
		r.Channel = meta.Channel
	}
	if r.VideoURL == "" {
		r.VideoURL = meta.URL
	}
	if r.HeroImage == "" {
		if path, ok := c.HeroImage(videoID); ok {
			r.HeroImage = path
		}
	}
	if err := r.Prepare(); err != nil {
		return nil, fmt.Errorf("video %s: %w", videoID, err)
	}
	return &r, nil
}

// writeFile replaces path atomically.
func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
