package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"kai/internal/api"
)

// Meetings lists recorded meetings.
func (c *Client) Meetings(ctx context.Context) ([]api.Meeting, error) {
	var meetings []api.Meeting
	if err := c.getJSON(ctx, "/meetings", nil, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

// Meeting fetches a single meeting.
func (c *Client) Meeting(ctx context.Context, id string) (*api.Meeting, error) {
	var meeting api.Meeting
	if err := c.getJSON(ctx, "/meetings/"+url.PathEscape(id), nil, &meeting); err != nil {
		return nil, err
	}
	return &meeting, nil
}

// MeetingSummary fetches the generated summary for a meeting.
func (c *Client) MeetingSummary(ctx context.Context, id string) (*api.MeetingSummary, error) {
	var summary api.MeetingSummary
	if err := c.getJSON(ctx, "/meetings/"+url.PathEscape(id)+"/summary", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// TranscribeMeeting attaches an audio recording to an existing meeting for
// transcription.
func (c *Client) TranscribeMeeting(ctx context.Context, id, audioPath string) (*api.TranscribeResponse, error) {
	return c.uploadAudio(ctx, "/meetings/"+url.PathEscape(id)+"/transcribe", audioPath, api.UploadMetadata{})
}

// UploadMeeting sends a standalone audio recording with optional calendar
// context, creating a new meeting.
func (c *Client) UploadMeeting(ctx context.Context, audioPath string, meta api.UploadMetadata) (*api.TranscribeResponse, error) {
	return c.uploadAudio(ctx, "/meetings/upload", audioPath, meta)
}

// uploadAudio builds a multipart body around the audio file. The body is
// fully buffered so the pipeline can replay it after a token refresh.
func (c *Client) uploadAudio(ctx context.Context, path, audioPath string, meta api.UploadMetadata) (*api.TranscribeResponse, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("%w: build multipart: %v", ErrEncoding, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	fields := map[string]string{}
	if meta.Title != "" {
		fields["title"] = meta.Title
	}
	if meta.MeetingID != "" {
		fields["meeting_id"] = meta.MeetingID
	}
	if !meta.EventStart.IsZero() {
		fields["event_start"] = meta.EventStart.UTC().Format(time.RFC3339)
	}
	if !meta.EventEnd.IsZero() {
		fields["event_end"] = meta.EventEnd.UTC().Format(time.RFC3339)
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("%w: write field %s: %v", ErrEncoding, name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: finish multipart: %v", ErrEncoding, err)
	}

	var resp api.TranscribeResponse
	err = c.doJSON(ctx, &apiRequest{
		method:      http.MethodPost,
		path:        path,
		body:        buf.Bytes(),
		contentType: writer.FormDataContentType(),
		upload:      true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
