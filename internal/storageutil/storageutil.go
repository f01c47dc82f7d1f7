package storageutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	gojson "github.com/goccy/go-json"
	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// ErrObjectNotFound indicates an object was not found.
var ErrObjectNotFound = errors.New("object not found")

const (
	CompressionNone   = ""
	CompressionLZ4    = "lz4"
	CompressionBrotli = "br"

	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// Encoding describes how an object is stored, derived from the suffixes of
// its key: "trace.json.lz4" is lz4-compressed JSON, "trace.msgpack" is plain
// msgpack.
type Encoding struct {
	Compression string
	Format      string
}

func EncodingOf(name string) Encoding {
	e := Encoding{Compression: CompressionNone, Format: FormatJSON}
	switch ext := path.Ext(name); ext {
	case ".lz4", ".br":
		e.Compression = ext[1:]
		name = strings.TrimSuffix(name, ext)
	}
	switch path.Ext(name) {
	case ".msgpack", ".mp":
		e.Format = FormatMsgpack
	}
	return e
}

// CompressedWrite encodes and compresses d according to the object name and
// writes it to the bucket.
func CompressedWrite(ctx context.Context, b *blob.Bucket, objectName string, d interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ow, err := b.NewWriter(ctx, objectName, nil)
	if err != nil {
		return err
	}
	e := EncodingOf(objectName)
	var zw io.WriteCloser
	switch e.Compression {
	case CompressionLZ4:
		w := lz4.NewWriter(ow)
		_ = w.Apply(lz4.CompressionLevelOption(lz4.Level9))
		zw = w
	case CompressionBrotli:
		zw = brotli.NewWriter(ow)
	case CompressionNone:
		zw = nopWriteCloser{ow}
	default:
		_ = ow.Close()
		return fmt.Errorf("unknown compression %q", e.Compression)
	}
	switch e.Format {
	case FormatMsgpack:
		enc := msgpack.NewEncoder(zw)
		enc.SetCustomStructTag("json")
		err = enc.Encode(d)
	default:
		err = gojson.NewEncoder(zw).Encode(d)
	}
	if err != nil {
		_ = ow.Close()
		return err
	}
	err = zw.Close()
	if err != nil {
		_ = ow.Close()
		return err
	}
	return ow.Close()
}

// UnmarshalCompressed reads an object from the bucket, decompresses and decodes
// it according to its name.
func UnmarshalCompressed(ctx context.Context, b *blob.Bucket, objectName string, d interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	or, err := b.NewReader(ctx, objectName, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, objectName)
		}
		return err
	}
	defer or.Close()
	e := EncodingOf(objectName)
	var zr io.Reader
	switch e.Compression {
	case CompressionLZ4:
		zr = lz4.NewReader(or)
	case CompressionBrotli:
		zr = brotli.NewReader(or)
	case CompressionNone:
		zr = or
	default:
		return fmt.Errorf("unknown compression %q", e.Compression)
	}
	switch e.Format {
	case FormatMsgpack:
		dec := msgpack.NewDecoder(zr)
		dec.SetCustomStructTag("json")
		return dec.Decode(d)
	default:
		return gojson.NewDecoder(zr).Decode(d)
	}
}

// ReadAll reads a whole object from the bucket.
func ReadAll(ctx context.Context, b *blob.Bucket, objectName string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data, err := b.ReadAll(ctx, objectName)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, objectName)
		}
		return nil, err
	}
	return data, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}
