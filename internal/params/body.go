package params

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/url"
	"strings"

	"github.com/rana-ox/testing-d1/internal/errs"
)

const (
	MediaTypeJSON = "application/json"
	MediaTypeForm = "application/x-www-form-urlencoded"
)

// DecodeBody turns a raw request body into Fields according to the declared
// content type. JSON bodies must be a single object; form bodies keep the
// last value of a repeated key. Invalid UTF-8 in either encoding comes back
// as U+FFFD.
func DecodeBody(contentType string, body io.Reader) (Fields, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, errs.Wrap(errs.KindUnsupportedContentType, err)
	}

	var decode func([]byte) (Fields, error)
	switch {
	case mediaType == MediaTypeJSON || strings.HasSuffix(mediaType, "+json"):
		decode = decodeJSON
	case mediaType == MediaTypeForm:
		decode = decodeForm
	default:
		return nil, errs.New(errs.KindUnsupportedContentType)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, errs.Wrap(errs.KindMalformedBody, err)
	}
	return decode(raw)
}

func decodeJSON(raw []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields Fields
	if err := dec.Decode(&fields); err != nil {
		return nil, errs.Wrap(errs.KindMalformedBody, err)
	}
	// `null` decodes without error into a nil map.
	if fields == nil {
		return nil, errs.Wrap(errs.KindMalformedBody, errors.New("body is not a JSON object"))
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errs.Wrap(errs.KindMalformedBody, errors.New("body must contain a single JSON object"))
	}
	return fields, nil
}

func decodeForm(raw []byte) (Fields, error) {
	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, errs.Wrap(errs.KindMalformedBody, err)
	}

	fields := make(Fields, len(values))
	for key, vs := range values {
		if len(vs) > 0 {
			fields[strings.ToValidUTF8(key, "\uFFFD")] = strings.ToValidUTF8(vs[len(vs)-1], "\uFFFD")
		}
	}
	return fields, nil
}
