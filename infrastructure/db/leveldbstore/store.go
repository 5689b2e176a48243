// Package leveldbstore is the concrete model.ChainDataStore backing the
// synchronizer: a single goleveldb database, bucket-prefixed keys, with
// goleveldb's own Transaction type doing double duty as model.StoreTx.
package leveldbstore

import (
	"encoding/binary"

	"github.com/lightrelay/plcs/domain/consensus/model"
	"github.com/lightrelay/plcs/domain/consensus/model/externalapi"
	"github.com/lightrelay/plcs/infrastructure/db/database/ldb"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
)

var (
	chainDataKeyPrefix = []byte("chaindata/")
	headKey            = []byte("head")
)

func chainDataKey(hash *externalapi.DomainHash) []byte {
	return append(append([]byte{}, chainDataKeyPrefix...), hash.ByteSlice()...)
}

// IsNotFoundError reports whether err is the store's not-found sentinel.
func IsNotFoundError(err error) bool {
	return model.IsNotFoundError(err)
}

// Store is a goleveldb-backed model.ChainDataStore. The synchronizer's
// "burst of sequential writes, then idle" access pattern is the reason for
// ldb's no-compression, large-write-buffer tuning: a sync attempt writes
// every block it touches once and then the store sits idle until the next
// attempt.
type Store struct {
	db    *leveldb.DB
	codec model.BlockCodec
}

// New opens (or creates) a chain data store at path, using codec to
// serialize whatever concrete externalapi.Block implementation the caller
// uses.
func New(path string, codec model.BlockCodec) (*Store, error) {
	db, err := leveldb.OpenFile(path, ldb.Options())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open chain data store at %s", path)
	}
	return &Store{db: db, codec: codec}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return errors.WithStack(s.db.Close())
}

// Begin opens a new transaction. Every write performed through it is
// invisible outside the transaction until Commit.
func (s *Store) Begin() (model.StoreTx, error) {
	txn, err := s.db.OpenTransaction()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &storeTx{txn: txn, codec: s.codec}, nil
}

type storeTx struct {
	txn    *leveldb.Transaction
	codec  model.BlockCodec
	closed bool
}

func (tx *storeTx) GetChainData(hash *externalapi.DomainHash) (*externalapi.ChainData, error) {
	raw, err := tx.txn.Get(chainDataKey(hash), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, errors.Wrap(model.ErrChainDataNotFound, err.Error())
		}
		return nil, errors.WithStack(err)
	}
	return tx.decodeChainData(raw)
}

func (tx *storeTx) PutChainData(hash *externalapi.DomainHash, data *externalapi.ChainData) error {
	raw, err := tx.encodeChainData(data)
	if err != nil {
		return err
	}
	return errors.WithStack(tx.txn.Put(chainDataKey(hash), raw, nil))
}

func (tx *storeTx) HeadHash() (*externalapi.DomainHash, bool, error) {
	raw, err := tx.txn.Get(headKey, nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, errors.WithStack(err)
	}
	hash, err := externalapi.NewDomainHashFromByteSlice(raw)
	if err != nil {
		return nil, false, err
	}
	return hash, true, nil
}

func (tx *storeTx) SetHead(hash *externalapi.DomainHash) error {
	return errors.WithStack(tx.txn.Put(headKey, hash.ByteSlice(), nil))
}

func (tx *storeTx) Truncate() error {
	iter := tx.txn.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		key := append([]byte{}, iter.Key()...)
		if err := tx.txn.Delete(key, nil); err != nil {
			return errors.WithStack(err)
		}
	}
	return errors.WithStack(iter.Error())
}

func (tx *storeTx) Commit() error {
	if tx.closed {
		return nil
	}
	tx.closed = true
	return errors.WithStack(tx.txn.Commit())
}

func (tx *storeTx) Abort() error {
	if tx.closed {
		return nil
	}
	tx.closed = true
	tx.txn.Discard()
	return nil
}

// encodeChainData lays out: [1 byte onMainChain][1 byte extendable]
// [8 bytes totalDifficulty][8 bytes totalWork][4 bytes block length][block bytes].
func (tx *storeTx) encodeChainData(data *externalapi.ChainData) ([]byte, error) {
	blockBytes, err := tx.codec.EncodeBlock(data.Block)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode block")
	}

	buf := make([]byte, 2+8+8+4+len(blockBytes))
	if data.OnMainChain {
		buf[0] = 1
	}
	totalDifficulty, diffOK := data.Totals.TotalDifficulty()
	totalWork, workOK := data.Totals.TotalWork()
	if diffOK && workOK {
		buf[1] = 1
	}
	binary.LittleEndian.PutUint64(buf[2:10], totalDifficulty)
	binary.LittleEndian.PutUint64(buf[10:18], totalWork)
	binary.LittleEndian.PutUint32(buf[18:22], uint32(len(blockBytes)))
	copy(buf[22:], blockBytes)
	return buf, nil
}

func (tx *storeTx) decodeChainData(raw []byte) (*externalapi.ChainData, error) {
	if len(raw) < 22 {
		return nil, errors.Errorf("chain data record too short: %d bytes", len(raw))
	}
	onMainChain := raw[0] == 1
	extendable := raw[1] == 1
	totalDifficulty := binary.LittleEndian.Uint64(raw[2:10])
	totalWork := binary.LittleEndian.Uint64(raw[10:18])
	blockLen := binary.LittleEndian.Uint32(raw[18:22])
	if len(raw) < 22+int(blockLen) {
		return nil, errors.Errorf("chain data record truncated: want %d more bytes, have %d", blockLen, len(raw)-22)
	}

	block, err := tx.codec.DecodeBlock(raw[22 : 22+int(blockLen)])
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode block")
	}

	totals := externalapi.NewLookupOnlyTotals()
	if extendable {
		totals = externalapi.NewExtendableTotals(totalDifficulty, totalWork)
	}

	return &externalapi.ChainData{
		Block:       block,
		Totals:      totals,
		OnMainChain: onMainChain,
	}, nil
}
