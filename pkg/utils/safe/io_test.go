package safe_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/airform/pkg/utils/safe"
)

type trackingBody struct {
	io.Reader
	closed   bool
	closeErr error
}

func (b *trackingBody) Close() error {
	b.closed = true
	return b.closeErr
}

func TestClose(t *testing.T) {
	safe.Close(context.Background(), nil)

	body := &trackingBody{Reader: strings.NewReader(""), closeErr: errors.New("already closed")}
	safe.Close(context.Background(), body)
	gt.Bool(t, body.closed).True()
}

func TestDrainClose(t *testing.T) {
	reader := strings.NewReader(`{"records":[]}`)
	body := &trackingBody{Reader: reader}

	safe.DrainClose(context.Background(), body)
	gt.Bool(t, body.closed).True()
	gt.Value(t, reader.Len()).Equal(0)
}
