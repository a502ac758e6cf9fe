package archive

import (
	"sort"
)

// TopicInfo summarizes one cached topic.
type TopicInfo struct {
	Size       int   `json:"size"`
	LatestDate int64 `json:"latest_date"` // unix seconds of the newest message
}

// StreamInfo summarizes one cached stream.
type StreamInfo struct {
	ID        int64                `json:"id"`
	LatestID  int64                `json:"latest_id"`
	TopicData map[string]TopicInfo `json:"topic_data"`
}

// Index is stream_index.json, the entry point of the JSON cache.
type Index struct {
	Time    int64                  `json:"time"` // unix seconds of the last populate
	Streams map[string]*StreamInfo `json:"streams"`
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{Streams: map[string]*StreamInfo{}}
}

// Stream returns the entry for name, creating it with id if missing.
func (idx *Index) Stream(name string, id int64) *StreamInfo {
	if idx.Streams == nil {
		idx.Streams = map[string]*StreamInfo{}
	}

	si, ok := idx.Streams[name]
	if !ok {
		si = &StreamInfo{ID: id, TopicData: map[string]TopicInfo{}}
		idx.Streams[name] = si
	}

	if si.TopicData == nil {
		si.TopicData = map[string]TopicInfo{}
	}

	return si
}

// MessageCount sums the sizes of all topics.
func (idx *Index) MessageCount() int {
	n := 0

	for _, si := range idx.Streams {
		for _, ti := range si.TopicData {
			n += ti.Size
		}
	}

	return n
}

// SortedStreams orders stream names by most recent activity, then by name.
func (idx *Index) SortedStreams() []string {
	names := make([]string, 0, len(idx.Streams))
	for name := range idx.Streams {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		a, b := idx.Streams[names[i]], idx.Streams[names[j]]
		if a.LatestID != b.LatestID {
			return a.LatestID > b.LatestID
		}

		return names[i] < names[j]
	})

	return names
}

// SortedTopics orders topic names by newest message first, then by name.
func (si *StreamInfo) SortedTopics() []string {
	names := make([]string, 0, len(si.TopicData))
	for name := range si.TopicData {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		a, b := si.TopicData[names[i]], si.TopicData[names[j]]
		if a.LatestDate != b.LatestDate {
			return a.LatestDate > b.LatestDate
		}

		return names[i] < names[j]
	})

	return names
}
