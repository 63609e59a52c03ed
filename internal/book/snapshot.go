package book

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/tartampluch/go-addressbook/internal/config"
	"google.golang.org/protobuf/encoding/protowire"
)

// Snapshot layout: config.SnapshotMagic followed by a zstd stream holding a
// protobuf-wire message:
//
//	Snapshot { 1: version (varint); 2: repeated Record (bytes) }
//	Record   { 1: name; 2: repeated phone; 3: email; 4: birthday "YYYY-MM-DD" }
//
// Records and phones are written in order, so a round-trip preserves both.
const (
	snapVersion protowire.Number = 1
	snapRecord  protowire.Number = 2

	recName     protowire.Number = 1
	recPhone    protowire.Number = 2
	recEmail    protowire.Number = 3
	recBirthday protowire.Number = 4
)

var errSnapshotFormat = errors.New(config.ErrSnapshotFormat)

// Save writes every record to path, replacing any existing file.
// The write is not atomic: a crash midway can leave a truncated snapshot.
func (ab *AddressBook) Save(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, config.FilePermUserRW)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSnapshotOpen, err)
	}

	if err := WriteSnapshot(f, ab.All()); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", config.ErrSnapshotWrite, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrSnapshotWrite, err)
	}

	slog.Info(config.MsgSnapshotSaved,
		config.LogKeyComponent, config.CompBook,
		config.LogKeyFile, path,
		config.LogKeyRecords, ab.Len(),
	)
	return nil
}

// Load merges the snapshot at path into the book. Loaded records replace
// same-named ones. A missing file is not an error.
func (ab *AddressBook) Load(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug(config.MsgSnapshotNone,
			config.LogKeyComponent, config.CompBook,
			config.LogKeyFile, path,
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSnapshotOpen, err)
	}
	defer func() { _ = f.Close() }()

	records, err := ReadSnapshot(f, ab.clock)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrSnapshotRead, err)
	}
	for _, r := range records {
		ab.put(r)
	}

	slog.Info(config.MsgSnapshotLoad,
		config.LogKeyComponent, config.CompBook,
		config.LogKeyFile, path,
		config.LogKeyRecords, len(records),
	)
	return nil
}

// WriteSnapshot encodes records to w.
func WriteSnapshot(w io.Writer, records []*Record) error {
	if _, err := io.WriteString(w, config.SnapshotMagic); err != nil {
		return err
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if _, err := enc.Write(marshalSnapshot(records)); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// ReadSnapshot decodes records from r. Every field is validated again, so a
// tampered file cannot smuggle in values the fields would reject.
func ReadSnapshot(r io.Reader, clock Clock) ([]*Record, error) {
	return readSnapshot(r, clock, config.MaxSnapshotSize)
}

// readSnapshot rejects payloads that decompress to more than limit bytes.
func readSnapshot(r io.Reader, clock Clock, limit int64) ([]*Record, error) {
	magic := make([]byte, len(config.SnapshotMagic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != config.SnapshotMagic {
		return nil, errSnapshotFormat
	}

	dec, err := zstd.NewReader(r, zstd.WithDecoderMaxMemory(uint64(limit)))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	payload, err := io.ReadAll(io.LimitReader(dec, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errSnapshotFormat, err)
	}
	if int64(len(payload)) > limit {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", errSnapshotFormat, limit)
	}
	return unmarshalSnapshot(payload, clockOrDefault(clock))
}

func marshalSnapshot(records []*Record) []byte {
	var b []byte
	b = protowire.AppendTag(b, snapVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, config.SnapshotVersion)
	for _, r := range records {
		b = protowire.AppendTag(b, snapRecord, protowire.BytesType)
		b = protowire.AppendBytes(b, marshalRecord(r))
	}
	return b
}

func marshalRecord(r *Record) []byte {
	var b []byte
	b = protowire.AppendTag(b, recName, protowire.BytesType)
	b = protowire.AppendString(b, r.Name())
	for _, p := range r.phones {
		b = protowire.AppendTag(b, recPhone, protowire.BytesType)
		b = protowire.AppendString(b, p.Value())
	}
	if r.email != nil {
		b = protowire.AppendTag(b, recEmail, protowire.BytesType)
		b = protowire.AppendString(b, r.email.Value())
	}
	if r.birthday != nil {
		b = protowire.AppendTag(b, recBirthday, protowire.BytesType)
		b = protowire.AppendString(b, r.birthday.String())
	}
	return b
}

func unmarshalSnapshot(b []byte, clock Clock) ([]*Record, error) {
	var records []*Record
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %w", errSnapshotFormat, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == snapVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %w", errSnapshotFormat, protowire.ParseError(n))
			}
			if v != config.SnapshotVersion {
				return nil, fmt.Errorf("%w: version %d", errSnapshotFormat, v)
			}
			b = b[n:]

		case num == snapRecord && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %w", errSnapshotFormat, protowire.ParseError(n))
			}
			r, err := unmarshalRecord(raw, clock)
			if err != nil {
				return nil, err
			}
			records = append(records, r)
			b = b[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %w", errSnapshotFormat, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return records, nil
}

func unmarshalRecord(b []byte, clock Clock) (*Record, error) {
	var (
		name     string
		phones   []string
		email    *string
		birthday *string
	)

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %w", errSnapshotFormat, protowire.ParseError(n))
		}
		b = b[n:]

		if typ != protowire.BytesType {
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("%w: %w", errSnapshotFormat, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeString(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: %w", errSnapshotFormat, protowire.ParseError(n))
		}
		b = b[n:]

		switch num {
		case recName:
			name = v
		case recPhone:
			phones = append(phones, v)
		case recEmail:
			email = &v
		case recBirthday:
			birthday = &v
		}
	}

	r, err := NewRecord(name, clock)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errSnapshotFormat, err)
	}
	for _, p := range phones {
		if err := r.AddPhone(p); err != nil {
			return nil, fmt.Errorf("%w: %w", errSnapshotFormat, err)
		}
	}
	if email != nil {
		if err := r.SetEmail(*email); err != nil {
			return nil, fmt.Errorf("%w: %w", errSnapshotFormat, err)
		}
	}
	if birthday != nil {
		bd, err := restoreBirthday(*birthday, clock)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errSnapshotFormat, err)
		}
		r.birthday = &bd
	}
	return r, nil
}
