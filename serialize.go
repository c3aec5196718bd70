// Binary serialization of the reader — the only half of the sparse
// index that is persisted. The envelope is
// [version byte][entry count, 8 bytes][blake2b-64 checksum, 8 bytes]
// [zstd-compressed msgpack payload]: a small fixed header ahead of a
// variable, compressed body, so a reader can validate and size-check
// before it ever touches the decompressor.
package sparseindex

import (
	"bytes"
	"encoding/binary"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/google/btree"
	"github.com/klauspost/compress/zstd"
	"github.com/ugorji/go/codec"
	"golang.org/x/crypto/blake2b"
)

// snapshotVersion gates the envelope format. Bump it, and branch on
// its value in DeserializeReader, before making any backward-incompatible
// change to the encoding.
const snapshotVersion = 1

const envelopeHeaderSize = 1 + 8 + 8 // version + count + checksum

// Shared encoder/decoder, both documented safe for concurrent use.
// Allocated once since construction (dictionary/state tables) is
// comparatively expensive next to encoding a snapshot of a few
// hundred entries.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
	msgpackHandle  codec.MsgpackHandle
)

// encodedEntry is the on-the-wire shape of one (Delimiter, BlockID,
// count) row. Delimiter is flattened into IsStart plus the composite
// key's fields rather than encoded as a tagged union, since msgpack
// has no native sum type and a flat struct keeps the codec mapping
// direct.
type encodedEntry struct {
	IsStart bool     `codec:"is_start"`
	Prefix  string   `codec:"prefix"`
	KeyKind uint8    `codec:"key_kind"`
	KeyStr  string   `codec:"key_str"`
	KeyBool bool     `codec:"key_bool"`
	KeyU32  uint32   `codec:"key_u32"`
	KeyF32  float32  `codec:"key_f32"`
	BlockID [16]byte `codec:"block_id"`
	Count   uint32   `codec:"count"`
}

func blake2bChecksum(data []byte) (uint64, error) {
	h, err := blake2b.New(8, nil)
	if err != nil {
		return 0, fmt.Errorf("sparseindex: blake2b init: %w", err)
	}
	h.Write(data)
	return binary.BigEndian.Uint64(h.Sum(nil)), nil
}

// Serialize encodes r into its persisted binary form. Round-tripping
// through DeserializeReader preserves delimiter order, block ids, and
// counts exactly.
func (r *Reader) Serialize() ([]byte, error) {
	entries := r.orderedEntries()
	encoded := make([]encodedEntry, len(entries))
	for i, e := range entries {
		ee := encodedEntry{BlockID: [16]byte(e.block), Count: e.count}
		if ck, ok := e.delim.CompositeKey(); ok {
			ee.Prefix = ck.Prefix
			ee.KeyKind = uint8(ck.Key.Kind())
			switch ck.Key.Kind() {
			case ScalarString:
				ee.KeyStr = ck.Key.StringValue()
			case ScalarBool:
				ee.KeyBool = ck.Key.BoolValue()
			case ScalarUint32:
				ee.KeyU32 = ck.Key.Uint32Value()
			case ScalarFloat32:
				ee.KeyF32 = ck.Key.Float32Value()
			}
		} else {
			ee.IsStart = true
		}
		encoded[i] = ee
	}

	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, &msgpackHandle)
	if err := enc.Encode(encoded); err != nil {
		return nil, fmt.Errorf("sparseindex: encode snapshot: %w", err)
	}

	compressed := zstdEncoder.EncodeAll(buf.Bytes(), nil)

	checksum, err := blake2bChecksum(compressed)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, envelopeHeaderSize+len(compressed))
	out = append(out, snapshotVersion)
	var word [8]byte
	binary.BigEndian.PutUint64(word[:], uint64(len(entries)))
	out = append(out, word[:]...)
	binary.BigEndian.PutUint64(word[:], checksum)
	out = append(out, word[:]...)
	out = append(out, compressed...)
	return out, nil
}

// DeserializeReader decodes a Reader from its persisted binary form,
// verifying the envelope checksum before decompressing and the
// delimiter ordering invariant before returning.
func DeserializeReader(data []byte, config ReaderConfig) (*Reader, error) {
	if len(data) < envelopeHeaderSize {
		return nil, ErrCorruptSnapshot
	}
	if data[0] != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, data[0])
	}
	declaredCount := binary.BigEndian.Uint64(data[1:9])
	wantChecksum := binary.BigEndian.Uint64(data[9:17])
	payload := data[17:]

	gotChecksum, err := blake2bChecksum(payload)
	if err != nil {
		return nil, err
	}
	if gotChecksum != wantChecksum {
		return nil, ErrChecksumMismatch
	}

	raw, err := zstdDecoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrCorruptSnapshot, err)
	}

	var encoded []encodedEntry
	dec := codec.NewDecoderBytes(raw, &msgpackHandle)
	if err := dec.Decode(&encoded); err != nil {
		return nil, fmt.Errorf("%w: msgpack: %v", ErrCorruptSnapshot, err)
	}
	if uint64(len(encoded)) != declaredCount || len(encoded) == 0 {
		return nil, ErrCorruptSnapshot
	}

	degree := config.degree()
	tree := btree.NewG(degree, readerLess)
	var prev Delimiter
	for i, ee := range encoded {
		var delim Delimiter
		if ee.IsStart {
			delim = Start()
		} else {
			var key TypedKey
			switch ScalarKind(ee.KeyKind) {
			case ScalarString:
				key = StringKey(ee.KeyStr)
			case ScalarBool:
				key = BoolKey(ee.KeyBool)
			case ScalarUint32:
				key = Uint32Key(ee.KeyU32)
			case ScalarFloat32:
				key = Float32Key(ee.KeyF32)
			default:
				return nil, ErrCorruptSnapshot
			}
			delim = Key(NewCompositeKey(ee.Prefix, key))
		}
		if i == 0 && !delim.IsStart() {
			return nil, ErrCorruptSnapshot
		}
		if i > 0 && !prev.Less(delim) {
			return nil, ErrCorruptSnapshot
		}
		prev = delim
		tree.ReplaceOrInsert(readerEntry{delim: delim, block: BlockID(ee.BlockID), count: ee.Count})
	}

	return &Reader{entries: tree, degree: degree}, nil
}

// debugEntry is the shape DebugJSON emits: a human-inspectable dump,
// distinct from the persisted msgpack+zstd envelope above.
type debugEntry struct {
	Delimiter string `json:"delimiter"`
	BlockID   string `json:"block_id"`
	Count     uint32 `json:"count"`
}

// DebugJSON renders the snapshot as JSON for tooling and diagnostics.
// It is not the persisted form — use Serialize/DeserializeReader for that.
func (r *Reader) DebugJSON() ([]byte, error) {
	entries := r.orderedEntries()
	out := make([]debugEntry, len(entries))
	for i, e := range entries {
		out[i] = debugEntry{Delimiter: e.delim.String(), BlockID: e.block.String(), Count: e.count}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("sparseindex: debug json: %w", err)
	}
	return data, nil
}
