package object

import (
	"context"
	"io"
	"net/http"
)

// Object describes an archived upload.
type Object struct {
	Key         string
	SizeBytes   int64
	ContentType string
}

// ObjectStore archives uploaded files under a per-user namespace.
type ObjectStore interface {
	Save(ctx context.Context, userID, fileName, contentType string, r io.Reader) (Object, error)
}

// SniffContentType reads up to 512 bytes to detect a content type when the
// caller did not supply one. The returned reader replays the sniffed bytes.
func SniffContentType(contentType string, r io.Reader) (string, io.Reader, error) {
	if contentType != "" {
		return contentType, r, nil
	}
	var sniff [512]byte
	n, err := io.ReadFull(r, sniff[:])
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	head := append([]byte(nil), sniff[:n]...)
	return http.DetectContentType(head), io.MultiReader(&byteReader{b: head}, r), nil
}

type byteReader struct {
	b []byte
}

func (br *byteReader) Read(p []byte) (int, error) {
	if len(br.b) == 0 {
		return 0, io.EOF
	}
	n := copy(p, br.b)
	br.b = br.b[n:]
	return n, nil
}
