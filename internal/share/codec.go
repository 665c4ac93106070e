// internal/share/codec.go
package share

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"planmark/internal/annotation"
)

// ErrCorruptPayload is returned when a share token fails any decode stage.
// Callers treat it as "nothing to restore".
var ErrCorruptPayload = errors.New("corrupt share payload")

// Payload is the reconstructed content of a share token. Annotations come
// back positionless and must be relocated against the loaded document.
type Payload struct {
	Document    string
	Annotations []annotation.Annotation
}

// compactAnnotation is the minimal wire form of one annotation, keyed by a
// one-character type tag. Structural locators are never transmitted; they
// are recomputed on load.
type compactAnnotation struct {
	Tag    string `json:"t"`
	Target string `json:"x,omitempty"`
	Note   string `json:"n,omitempty"`
	Author string `json:"u,omitempty"`
}

type wirePayload struct {
	Document    string              `json:"d"`
	Annotations []compactAnnotation `json:"a"`
}

var tagForType = map[annotation.Type]string{
	annotation.TypeDeletion:      "d",
	annotation.TypeInsertion:     "i",
	annotation.TypeReplacement:   "r",
	annotation.TypeComment:       "c",
	annotation.TypeGlobalComment: "g",
}

var typeForTag = map[string]annotation.Type{
	"d": annotation.TypeDeletion,
	"i": annotation.TypeInsertion,
	"r": annotation.TypeReplacement,
	"c": annotation.TypeComment,
	"g": annotation.TypeGlobalComment,
}

// Codec turns a (document, annotations) pair into a compact token safe for
// a URL fragment, and back.
type Codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewCodec creates a codec compressing at the given zstd level
func NewCodec(compressionLevel int) *Codec {
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
	dec, _ := zstd.NewReader(nil)
	return &Codec{enc: enc, dec: dec}
}

// Encode serializes, compresses and armors the document plus annotations
func (c *Codec) Encode(document string, anns []annotation.Annotation) (string, error) {
	wire := wirePayload{Document: document}
	for _, a := range anns {
		tag, ok := tagForType[a.Type]
		if !ok {
			return "", fmt.Errorf("unknown annotation type %q", a.Type)
		}
		ca := compactAnnotation{Tag: tag, Author: a.Author}
		switch a.Type {
		case annotation.TypeDeletion:
			ca.Target = a.TargetText
		case annotation.TypeGlobalComment:
			ca.Note = a.Note
		default:
			ca.Target = a.TargetText
			ca.Note = a.Note
		}
		wire.Annotations = append(wire.Annotations, ca)
	}

	raw, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	compressed := c.enc.EncodeAll(raw, nil)
	return base64.RawURLEncoding.EncodeToString(compressed), nil
}

// Decode reverses Encode. Any malformed stage yields ErrCorruptPayload.
func (c *Codec) Decode(token string) (Payload, error) {
	compressed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}

	raw, err := c.dec.DecodeAll(compressed, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}

	var wire wirePayload
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}

	p := Payload{Document: wire.Document}
	now := time.Now()
	for _, ca := range wire.Annotations {
		typ, ok := typeForTag[ca.Tag]
		if !ok {
			return Payload{}, fmt.Errorf("%w: unknown tag %q", ErrCorruptPayload, ca.Tag)
		}
		p.Annotations = append(p.Annotations, annotation.Annotation{
			ID:         uuid.NewString(),
			Type:       typ,
			TargetText: ca.Target,
			Note:       ca.Note,
			Author:     ca.Author,
			CreatedAt:  now,
		})
	}
	return p, nil
}
