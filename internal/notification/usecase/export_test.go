package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/fanoutlabs/herald/internal/notification/entity"
	"github.com/fanoutlabs/herald/internal/pkg/storage"
)

type fakeBlob struct {
	objects map[string][]byte
	putErr  error
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{objects: make(map[string][]byte)}
}

func (f *fakeBlob) Close() error { return nil }

func (f *fakeBlob) PutObject(_ context.Context, bucket, key string, r io.Reader, opts storage.PutOptions) (storage.ObjectInfo, error) {
	if f.putErr != nil {
		return storage.ObjectInfo{}, f.putErr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}

	f.objects[bucket+"/"+key] = data
	return storage.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(data)), ContentType: opts.ContentType}, nil
}

func (f *fakeBlob) StatObject(_ context.Context, bucket, key string) (storage.ObjectInfo, error) {
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return storage.ObjectInfo{}, errors.New("object not found")
	}
	return storage.ObjectInfo{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

func (f *fakeBlob) PresignGet(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	return "https://blob.test/" + bucket + "/" + key, nil
}

func TestExport(t *testing.T) {
	f := newFixture(t)

	blob := newFakeBlob()
	f.uc.blob = blob
	f.uc.exportBucket = "herald-exports"

	f.uc.senders.Register(entity.ChannelEmail, &fakeSender{})
	f.uc.processPayload(context.Background(), &entity.Payload{
		ID:      "p-exp",
		Subject: "s",
		Body:    "b",
		Recipients: []entity.Recipient{
			{Value: "ada@example.com", Channel: entity.ChannelEmail},
			{Value: "bob@example.com", Channel: entity.ChannelEmail},
		},
	})

	out, err := f.uc.Export(context.Background(), ExportInput{
		From: f.clock.now.Add(-time.Hour),
		To:   f.clock.now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if out.Entries != 2 {
		t.Fatalf("Entries = %d, want 2", out.Entries)
	}
	if !strings.HasPrefix(out.URL, "https://blob.test/herald-exports/exports/delivery-logs-") {
		t.Fatalf("URL = %q, want presigned export url", out.URL)
	}

	data, ok := blob.objects["herald-exports/"+out.Key]
	if !ok {
		t.Fatalf("object %q not stored", out.Key)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("csv rows = %d, want header plus 2 entries", len(records))
	}
	if records[0][0] != "id" || records[0][3] != "recipient" {
		t.Fatalf("csv header = %v", records[0])
	}
}

func TestExportRejectsInvertedRange(t *testing.T) {
	f := newFixture(t)
	f.uc.blob = newFakeBlob()

	_, err := f.uc.Export(context.Background(), ExportInput{
		From: f.clock.now,
		To:   f.clock.now.Add(-time.Hour),
	})
	if err == nil {
		t.Fatal("Export with inverted range = nil error, want validation error")
	}
}

func TestExportWithoutObjectStorage(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Export(context.Background(), ExportInput{
		From: f.clock.now.Add(-time.Hour),
		To:   f.clock.now,
	})
	if err == nil {
		t.Fatal("Export without object storage = nil error, want business error")
	}
}
