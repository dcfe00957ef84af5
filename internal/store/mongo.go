// Package store commits normalized records to MongoDB in size-bounded bulk
// batches, keyed on each record's id so re-writing after a crash is an
// overwrite rather than a duplicate.
package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"bandsync/internal/transform"
	"bandsync/pkg/logger"
)

// MaxBatchSize is the largest number of writes one bulk commit may carry.
const MaxBatchSize = 500

// Commit describes one bulk batch that reached the store.
type Commit struct {
	Collection string
	Size       int
	Matched    int64
	Upserted   int64
}

// UploadError is a failed bulk commit. Committed lists the chunks that had
// already succeeded before the failure, so partial progress is visible to
// the caller instead of silently lost.
type UploadError struct {
	Collection string
	Committed  []Commit
	Err        error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("store: bulk write to %q failed after %d committed batches: %v",
		e.Collection, len(e.Committed), e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

type Writer struct {
	db *mongo.Database
}

func NewWriter(db *mongo.Database) *Writer {
	return &Writer{db: db}
}

// Write commits every group's records to its destination collection in
// chunks of at most MaxBatchSize, one bulk upsert per chunk. All records of
// all groups are checked for a non-empty id before anything is committed.
func (w *Writer) Write(ctx context.Context, groups []transform.Group) ([]Commit, error) {
	for _, group := range groups {
		for _, record := range group.Records {
			if record.ID() == "" {
				return nil, fmt.Errorf("store: record without an id bound for %q: %v", group.Collection, record)
			}
		}
	}

	var commits []Commit
	for _, group := range groups {
		coll := w.db.Collection(group.Collection)
		for _, chunk := range chunkRecords(group.Records, MaxBatchSize) {
			models := make([]mongo.WriteModel, 0, len(chunk))
			for _, record := range chunk {
				models = append(models, mongo.NewReplaceOneModel().
					SetFilter(bson.M{"_id": record.ID()}).
					SetReplacement(withKey(record)).
					SetUpsert(true))
			}
			res, err := coll.BulkWrite(ctx, models)
			if err != nil {
				return commits, &UploadError{Collection: group.Collection, Committed: commits, Err: err}
			}
			commit := Commit{
				Collection: group.Collection,
				Size:       len(chunk),
				Matched:    res.MatchedCount,
				Upserted:   res.UpsertedCount,
			}
			commits = append(commits, commit)
			logger.Info("Bulk write to %s: %d records, matched %d, upserted %d",
				commit.Collection, commit.Size, commit.Matched, commit.Upserted)
		}
	}
	return commits, nil
}

// Count reports how many documents a collection holds.
func Count(ctx context.Context, db *mongo.Database, collection string) (int64, error) {
	return db.Collection(collection).CountDocuments(ctx, bson.M{})
}

// chunkRecords splits records into slices of at most size elements,
// preserving order.
func chunkRecords(records []transform.Record, size int) [][]transform.Record {
	if len(records) == 0 {
		return nil
	}
	chunks := make([][]transform.Record, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[start:end])
	}
	return chunks
}

// withKey copies a record with its id mirrored into Mongo's _id field.
func withKey(record transform.Record) bson.M {
	doc := make(bson.M, len(record)+1)
	for k, v := range record {
		doc[k] = v
	}
	doc["_id"] = record.ID()
	return doc
}
