// Package archive fills the JSON cache from a Zulip server.
//
// Data only moves one way: Zulip -> stream_index.json plus one JSON file per
// topic. A full populate reads every topic of every archived stream; an
// incremental populate asks for messages after the newest id recorded in
// the index and appends them to the topic files.
package archive

import (
	"context"
	"io/fs"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/zulip-archive/zulip-archive/internal/metrics"
	"github.com/zulip-archive/zulip-archive/internal/zulip"
)

// Mode names a populate flavour. It is also used as the run mode in the history.
type Mode string

const (
	ModeFull        Mode = "full"
	ModeIncremental Mode = "incremental"
)

// Source is the part of the Zulip API a populate needs.
type Source interface {
	GetStreams(ctx context.Context) ([]zulip.Stream, error)
	GetStreamTopics(ctx context.Context, streamID int64) ([]zulip.Topic, error)
	GetMessages(ctx context.Context, req zulip.MessagesRequest) (*zulip.MessagesResponse, error)
}

// Result summarizes a populate.
type Result struct {
	Streams  int // streams visited
	Messages int // messages fetched
}

// Populator writes what a Source returns into a Store.
type Populator struct {
	source  Source
	store   *Store
	include func(stream string) bool
	clock   clockwork.Clock
}

// NewPopulator wires a populate. include decides which streams are archived;
// a nil clock means the real clock.
func NewPopulator(source Source, store *Store, include func(string) bool, clock clockwork.Clock) *Populator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	if include == nil {
		include = func(string) bool { return true }
	}

	return &Populator{source: source, store: store, include: include, clock: clock}
}

// Run dispatches on mode.
func (p *Populator) Run(ctx context.Context, mode Mode) (Result, error) {
	if mode == ModeIncremental {
		return p.Incremental(ctx)
	}

	return p.All(ctx)
}

// All rebuilds the cache from scratch.
func (p *Populator) All(ctx context.Context) (Result, error) {
	var res Result

	streams, err := p.source.GetStreams(ctx)
	if err != nil {
		return res, errors.Wrap(err, "failed to list streams")
	}

	idx := NewIndex()

	for _, s := range streams {
		if !p.include(s.Name) {
			continue
		}

		log.Info().Str("stream", s.Name).Int64("stream_id", s.StreamID).Msg("fetching stream")

		topics, err := p.source.GetStreamTopics(ctx, s.StreamID)
		if err != nil {
			return res, errors.Wrapf(err, "failed to list topics of %s", s.Name)
		}

		si := idx.Stream(s.Name, s.StreamID)

		for _, t := range topics {
			msgs, err := RequestAll(ctx, p.source, zulip.TopicNarrow(s.Name, t.Name), 0)
			if err != nil {
				return res, errors.Wrapf(err, "failed to fetch %s > %s", s.Name, t.Name)
			}

			if len(msgs) == 0 {
				log.Debug().Str("stream", s.Name).Str("topic", t.Name).Msg("skipping empty topic")
				continue
			}

			last := msgs[len(msgs)-1]
			si.TopicData[t.Name] = TopicInfo{Size: len(msgs), LatestDate: last.Timestamp}
			si.LatestID = max(si.LatestID, last.ID)

			if err := p.store.SaveTopic(s.Name, s.StreamID, t.Name, msgs); err != nil {
				return res, err
			}

			res.Messages += len(msgs)
		}

		res.Streams++
	}

	idx.Time = p.clock.Now().UTC().Unix()

	if err := p.store.SaveIndex(idx); err != nil {
		return res, err
	}

	metrics.MessagesFetched.WithLabelValues(string(ModeFull)).Add(float64(res.Messages))

	return res, nil
}

// Incremental fetches messages newer than the index and appends them.
// It fails with ErrIndexNotFound if All never ran.
func (p *Populator) Incremental(ctx context.Context) (Result, error) {
	var res Result

	idx, err := p.store.LoadIndex()
	if err != nil {
		return res, err
	}

	streams, err := p.source.GetStreams(ctx)
	if err != nil {
		return res, errors.Wrap(err, "failed to list streams")
	}

	for _, s := range streams {
		if !p.include(s.Name) {
			continue
		}

		log.Info().Str("stream", s.Name).Int64("stream_id", s.StreamID).Msg("updating stream")

		si := idx.Stream(s.Name, s.StreamID)

		msgs, err := RequestAll(ctx, p.source, zulip.StreamNarrow(s.Name), si.LatestID+1)
		if err != nil {
			return res, errors.Wrapf(err, "failed to fetch new messages of %s", s.Name)
		}

		if len(msgs) > 0 {
			si.LatestID = msgs[len(msgs)-1].ID
		}

		byTopic := SeparateResults(msgs)

		for topic, fresh := range byTopic {
			old, err := p.store.LoadTopic(s.Name, s.StreamID, topic)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return res, err
			}

			merged := append(old, fresh...) //nolint:gocritic

			si.TopicData[topic] = TopicInfo{Size: len(merged), LatestDate: fresh[len(fresh)-1].Timestamp}

			if err := p.store.SaveTopic(s.Name, s.StreamID, topic, merged); err != nil {
				return res, err
			}
		}

		res.Streams++
		res.Messages += len(msgs)
	}

	idx.Time = p.clock.Now().UTC().Unix()

	if err := p.store.SaveIndex(idx); err != nil {
		return res, err
	}

	metrics.MessagesFetched.WithLabelValues(string(ModeIncremental)).Add(float64(res.Messages))

	return res, nil
}

// RequestAll pages through every message matching narrow, starting at
// anchor, BatchSize messages per request, until the server reports the
// newest message was reached.
func RequestAll(ctx context.Context, source Source, narrow []zulip.NarrowTerm, anchor int64) ([]zulip.Message, error) {
	var all []zulip.Message

	for {
		resp, err := source.GetMessages(ctx, zulip.MessagesRequest{
			Narrow:         narrow,
			Anchor:         anchor,
			NumBefore:      0,
			NumAfter:       zulip.BatchSize,
			ClientGravatar: true,
			ApplyMarkdown:  true,
		})
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Messages...)

		if resp.FoundNewest || len(resp.Messages) == 0 {
			return all, nil
		}

		anchor = resp.Messages[len(resp.Messages)-1].ID + 1
	}
}

// SeparateResults groups messages by topic, keeping their order.
func SeparateResults(msgs []zulip.Message) map[string][]zulip.Message {
	byTopic := make(map[string][]zulip.Message)

	for _, m := range msgs {
		byTopic[m.Subject] = append(byTopic[m.Subject], m)
	}

	return byTopic
}
