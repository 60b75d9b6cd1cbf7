package toolrun

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Decoder converts captured tool output into UTF-8 text. Undecodable bytes
// are replaced, never fatal: malformed output is still classified.
type Decoder struct {
	enc encoding.Encoding
}

// NewDecoder resolves an encoding by IANA name ("UTF-8", "ISO-8859-1", ...).
// Locale spellings such as "en_US.UTF-8" are accepted; the codeset part
// after the dot wins.
func NewDecoder(name string) (*Decoder, error) {
	name = strings.TrimSpace(name)
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	if name == "" || strings.EqualFold(name, "UTF-8") || strings.EqualFold(name, "UTF8") || strings.EqualFold(name, "C") || strings.EqualFold(name, "POSIX") {
		return &Decoder{enc: unicode.UTF8}, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unknown encoding %q", name)
	}
	return &Decoder{enc: enc}, nil
}

// DefaultEncodingName picks the encoding to use when the user gave none:
// $LC_ALL when set, UTF-8 otherwise.
func DefaultEncodingName() string {
	if lc := os.Getenv("LC_ALL"); lc != "" {
		return lc
	}
	return "UTF-8"
}

// ReadFile reads a file the tools wrote and decodes it like their stream
// output. The .log file is in the same encoding as stdout.
func (d *Decoder) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return d.Decode(data), nil
}

// Decode converts raw bytes to UTF-8, replacing anything undecodable.
func (d *Decoder) Decode(b []byte) string {
	if d == nil || d.enc == nil || d.enc == unicode.UTF8 {
		return strings.ToValidUTF8(string(b), "�")
	}
	out, err := d.enc.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(out)
}
