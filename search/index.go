// Package search maintains the full-text index over text messages.
// The index is a lookup accelerator only: the snapshot stays the
// source of truth and index failures are never fatal to a post.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"

	"textbox/domain"
	dsearch "textbox/domain/search"
	"textbox/errors"
)

// Hit is one search result, rebuilt from the stored index fields.
type Hit struct {
	ID       string
	Sender   string
	Receiver string
	Content  string
}

type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

// NewMessageIndex wraps an already opened Bluge writer. The caller
// owns the writer and closes it at shutdown.
func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

// Index adds a text message to the index. Image messages carry an
// encoded payload with nothing searchable, so they are ignored.
func (i *MessageIndex) Index(msg domain.Message) error {
	if msg.Kind != domain.KindText {
		return nil
	}
	doc := bluge.NewDocument(msg.ID.String()).
		AddField(bluge.NewTextField("content", msg.Content).StoreValue()).
		AddField(bluge.NewKeywordField("sender", msg.Sender).StoreValue()).
		AddField(bluge.NewKeywordField("receiver", msg.Receiver).StoreValue())
	if err := i.writer.Update(doc.ID(), doc); err != nil {
		return err
	}
	i.log.Debug("message indexed", "id", msg.ID)
	return nil
}

// Remove drops a message from the index, e.g. after a conversation
// has been cleared.
func (i *MessageIndex) Remove(id uuid.UUID) error {
	if err := i.writer.Delete(bluge.Identifier(id.String())); err != nil {
		return err
	}
	i.log.Debug("message dropped from index", "id", id)
	return nil
}

// Search runs a parsed query against the index and returns at most
// query.Limit hits, best match first.
func (i *MessageIndex) Search(ctx context.Context, query *dsearch.Query) ([]Hit, error) {
	if query.Terms == "" {
		return nil, errors.ErrEmptySearch
	}

	match := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(query.Terms).SetField("content"))
	if query.From != "" {
		match.AddMust(bluge.NewTermQuery(query.From).SetField("sender"))
	}
	if query.With != "" {
		either := bluge.NewBooleanQuery().
			AddShould(bluge.NewTermQuery(query.With).SetField("sender")).
			AddShould(bluge.NewTermQuery(query.With).SetField("receiver"))
		either.SetMinShould(1)
		match.AddMust(either)
	}

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("index reader: %w", err)
	}
	defer reader.Close()

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(query.Limit, match))
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}

	var hits []Hit
	next, err := iterator.Next()
	for err == nil && next != nil {
		var hit Hit
		err = next.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.ID = string(value)
			case "content":
				hit.Content = string(value)
			case "sender":
				hit.Sender = string(value)
			case "receiver":
				hit.Receiver = string(value)
			}
			return true
		})
		if err != nil {
			return nil, fmt.Errorf("index stored fields: %w", err)
		}
		hits = append(hits, hit)
		next, err = iterator.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("index iteration: %w", err)
	}
	return hits, nil
}
