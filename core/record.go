package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jawat-my/saferoute/constants"
	"github.com/jawat-my/saferoute/model"
	"github.com/jawat-my/saferoute/utils"
)

// RecordExchange persists one relay exchange and archives the raw bodies to
// the blob store. Side-channel failures are logged and swallowed: the relay
// response never depends on storage, blob, or event availability.
func RecordExchange(ctx context.Context, deps *Dependencies, operation string, request, response any, opErr error) *model.RelayRecord {
	rec := &model.RelayRecord{
		ID:        uuid.New(),
		Operation: operation,
		Status:    model.RecordSucceeded,
		CreatedAt: time.Now().UTC(),
	}
	if opErr != nil {
		rec.Status = model.RecordFailed
		rec.Error = opErr.Error()
	}
	if res := utils.MarshalJSON(request); res.Err == nil {
		rec.RequestBody = string(res.Data)
	}
	if res := utils.MarshalJSON(response); res.Err == nil {
		rec.ResponseBody = string(res.Data)
	}

	if deps.Blob != nil {
		archive := utils.MarshalJSON(map[string]any{
			"operation": operation,
			"request":   rec.RequestBody,
			"response":  rec.ResponseBody,
			"error":     rec.Error,
		})
		if archive.Err == nil {
			name := fmt.Sprintf("relay/%s-%s.json", operation, rec.ID)
			url, err := deps.Blob.Put(ctx, archive.Data, constants.ContentTypeJSON, name)
			if err != nil {
				utils.Warn(constants.LogArchiveFailed, err)
			} else {
				rec.ArchiveURL = url
			}
		}
	}

	if deps.Store != nil {
		if err := deps.Store.SaveRecord(ctx, rec); err != nil {
			utils.Error(constants.LogRecordSaveFailed, err)
		}
	}
	return rec
}

// publish sends an event on the bus, logging failures without surfacing them.
func (d *Dependencies) publish(topic string, payload any) {
	if d.Bus == nil {
		return
	}
	if err := d.Bus.Publish(topic, payload); err != nil {
		utils.Warn(constants.LogPublishFailed, topic, err)
	}
}
