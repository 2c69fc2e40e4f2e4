package prober

import (
	"context"

	"github.com/samvad-hq/envelope-client/pkg/httpclient"
)

type statusSlotKey struct{}

// withStatusSlot returns a context carrying a slot the transport fills with
// the HTTP status of the response.
func withStatusSlot(ctx context.Context) (context.Context, *int) {
	slot := new(int)
	return context.WithValue(ctx, statusSlotKey{}, slot), slot
}

// statusTap records response statuses into the slot carried by ctx.
type statusTap struct {
	next httpclient.Client
}

func (t statusTap) Do(ctx context.Context, req httpclient.Request) (httpclient.Response, error) {
	resp, err := t.next.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if slot, ok := ctx.Value(statusSlotKey{}).(*int); ok {
		*slot = resp.StatusCode()
	}
	return resp, nil
}
