package store

import (
	"errors"
	"fmt"

	"github.com/fivetwenty-io/cfapps/internal/constants"
	"github.com/fivetwenty-io/cfapps/pkg/capi"
	"github.com/nats-io/nats.go"
)

// NATSConfig configures the JetStream key-value backend.
type NATSConfig struct {
	// URL of the NATS server, e.g. "nats://127.0.0.1:4222".
	URL string
	// Bucket is the key-value bucket name. Created when missing.
	Bucket string
	// Options are passed through to nats.Connect.
	Options []nats.Option
}

// NATSStore keeps state in a NATS JetStream key-value bucket so several
// clients can share the org selection.
type NATSStore struct {
	conn *nats.Conn
	kv   nats.KeyValue
}

// NewNATSStore connects to NATS and binds (or creates) the bucket.
func NewNATSStore(config *NATSConfig) (*NATSStore, error) {
	if config == nil || config.URL == "" {
		return nil, constants.ErrNATSURLRequired
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultNATSBucket
	}

	opts := append([]nats.Option{
		nats.Name(constants.ServiceName),
		nats.Timeout(constants.NATSConnectTimeout),
	}, config.Options...)

	conn, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:      bucket,
			Description: "cfapps UI state",
			History:     1,
		})
	}

	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("binding key-value bucket %q: %w", bucket, err)
	}

	return &NATSStore{conn: conn, kv: kv}, nil
}

// NewNATSStoreFromKeyValue wraps an already bound bucket. The caller owns
// the connection.
func NewNATSStoreFromKeyValue(kv nats.KeyValue) *NATSStore {
	return &NATSStore{kv: kv}
}

// Get implements capi.StateStore.
func (s *NATSStore) Get(key string) (string, error) {
	entry, err := s.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return "", fmt.Errorf("%w: %s", capi.ErrStateNotFound, key)
	}

	if err != nil {
		return "", fmt.Errorf("getting %s from NATS KV: %w", key, err)
	}

	return string(entry.Value()), nil
}

// Put implements capi.StateStore.
func (s *NATSStore) Put(key, value string) error {
	_, err := s.kv.Put(key, []byte(value))
	if err != nil {
		return fmt.Errorf("putting %s into NATS KV: %w", key, err)
	}

	return nil
}

// Delete implements capi.StateStore.
func (s *NATSStore) Delete(key string) error {
	err := s.kv.Delete(key)
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting %s from NATS KV: %w", key, err)
	}

	return nil
}

// Close releases the NATS connection when the store owns it.
func (s *NATSStore) Close() {
	if s.conn != nil {
		s.conn.Close()
	}
}
