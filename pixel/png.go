package pixel

import (
	"bytes"
	"fmt"

	"pixpal/png"
)

// FromDocument copies a decoded document into an indexed buffer.
func FromDocument(doc *png.Document) (*Buffer, error) {
	return NewIndexed(doc.Width(), doc.Height(), doc.Palette, bytes.Clone(doc.Pixels))
}

// ToDocument builds an 8-bit indexed document from an indexed buffer.
func (b *Buffer) ToDocument() (*png.Document, error) {
	if !b.Indexed {
		return nil, fmt.Errorf("pixel: only indexed buffers can become PNG documents")
	}
	return png.NewIndexed(b.Width, b.Height, b.Palette, bytes.Clone(b.Pix))
}

func DecodePNG(data []byte, opts png.Options) (*Buffer, error) {
	doc, err := png.Decode(data, opts)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc)
}

func (b *Buffer) EncodePNG(opts png.Options) ([]byte, error) {
	doc, err := b.ToDocument()
	if err != nil {
		return nil, err
	}
	return doc.Encode(opts)
}
