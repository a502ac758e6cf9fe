package archive

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/zulip-archive/zulip-archive/internal/links"
	"github.com/zulip-archive/zulip-archive/internal/zulip"
)

const (
	// IndexFile is the name of the index inside the JSON directory.
	IndexFile = "stream_index.json"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Store reads and writes the JSON cache below one directory.
type Store struct {
	root string
}

// NewStore returns a Store rooted at dir. Nothing is created until the first write.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Root is the JSON directory.
func (s *Store) Root() string {
	return s.root
}

// IndexPath is the location of stream_index.json.
func (s *Store) IndexPath() string {
	return filepath.Join(s.root, IndexFile)
}

// TopicPath is the location of one topic's message list.
func (s *Store) TopicPath(stream string, streamID int64, topic string) string {
	return filepath.Join(s.root, links.SanitizeStream(stream, streamID), links.SanitizeTopic(topic)+".json")
}

// LoadIndex reads the index. ErrIndexNotFound means no populate ran yet.
func (s *Store) LoadIndex() (*Index, error) {
	idx := NewIndex()

	if err := readJSON(s.IndexPath(), idx); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(ErrIndexNotFound, s.IndexPath())
		}

		return nil, err
	}

	for name := range idx.Streams {
		if idx.Streams[name] == nil {
			delete(idx.Streams, name)
		}
	}

	return idx, nil
}

// SaveIndex writes the index.
func (s *Store) SaveIndex(idx *Index) error {
	return writeJSON(s.IndexPath(), idx)
}

// LoadTopic reads a topic's messages. A topic that was never written
// yields fs.ErrNotExist.
func (s *Store) LoadTopic(stream string, streamID int64, topic string) ([]zulip.Message, error) {
	var msgs []zulip.Message

	if err := readJSON(s.TopicPath(stream, streamID, topic), &msgs); err != nil {
		return nil, err
	}

	return msgs, nil
}

// SaveTopic writes a topic's messages.
func (s *Store) SaveTopic(stream string, streamID int64, topic string, msgs []zulip.Message) error {
	return writeJSON(s.TopicPath(stream, streamID, topic), msgs)
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return errors.Wrapf(json.Unmarshal(b, v), "failed to decode %s", path)
}

// writeJSON writes through a temp file and a rename so readers never see a
// half written file.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return errors.Wrapf(err, "failed to encode %s", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file in %s", dir)
	}

	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "failed to write %s", tmp.Name())
	}

	if err := tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "failed to chmod %s", tmp.Name())
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", tmp.Name())
	}

	return errors.Wrapf(os.Rename(tmp.Name(), path), "failed to move %s into place", path)
}
