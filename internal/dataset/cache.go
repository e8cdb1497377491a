package dataset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"
)

// FeatureCache stores raw move vectors so reruns skip tree parsing.
// Safe for concurrent use.
type FeatureCache struct {
	db      *badger.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// OpenFeatureCache opens a cache in dir; an empty dir keeps it in memory.
func OpenFeatureCache(dir string) (*FeatureCache, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open feature cache: %w", err)
	}
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &FeatureCache{db: db, encoder: encoder, decoder: decoder}, nil
}

func (c *FeatureCache) Close() error {
	c.decoder.Close()
	c.encoder.Close()
	return c.db.Close()
}

func (c *FeatureCache) Get(key string) ([]float64, bool, error) {
	var result []float64
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw, err := c.decoder.DecodeAll(val, nil)
			if err != nil {
				return err
			}
			result, err = decodeFloats(raw)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("feature cache get %v: %w", key, err)
	}
	return result, true, nil
}

func (c *FeatureCache) Put(key string, values []float64) error {
	var data = c.encoder.EncodeAll(encodeFloats(values), nil)
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// CacheKey binds a move to the current state of its tree files, so
// regenerating any tree invalidates the entry.
func CacheKey(moveName, uci string, treePaths []string) string {
	var h = fnv.New64a()
	for _, path := range treePaths {
		var info, err = os.Stat(path)
		if err != nil {
			fmt.Fprintf(h, "%v:missing;", path)
			continue
		}
		fmt.Fprintf(h, "%v:%v:%v;", path, info.Size(), info.ModTime().UnixNano())
	}
	return fmt.Sprintf("%v|%v|%016x", moveName, uci, h.Sum64())
}

func encodeFloats(values []float64) []byte {
	var buf = make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

func decodeFloats(buf []byte) ([]float64, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("corrupted entry of %v bytes", len(buf))
	}
	var result = make([]float64, len(buf)/8)
	for i := range result {
		result[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return result, nil
}
