package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/domain"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/ports"
)

// cursorField names the sort key encoded in history cursors.
const cursorField = "created_at"

// ErrInvalidCursor is returned for cursors that were not issued by this API.
var ErrInvalidCursor = errors.New("invalid cursor")

// PageQuery holds the pagination query parameters.
type PageQuery struct {
	// Cursor is the NextCursor of a previous page.
	Cursor string `form:"cursor"`
	Limit  int    `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// Page is one page of results.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// CursorData is the decoded form of a cursor.
type CursorData struct {
	Field string `json:"f"`
	Value string `json:"v"`
	ID    string `json:"id"`
}

// EncodeCursor serializes a cursor. A nil cursor encodes to "".
func EncodeCursor(data *CursorData) string {
	if data == nil {
		return ""
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}

	return base64.URLEncoding.EncodeToString(raw)
}

// DecodeCursor parses an encoded cursor. An empty string yields nil.
func DecodeCursor(encoded string) (*CursorData, error) {
	if encoded == "" {
		return nil, nil //nolint:nilnil // no cursor means first page
	}

	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var data CursorData
	if err := json.Unmarshal(raw, &data); err != nil || data.ID == "" {
		return nil, ErrInvalidCursor
	}

	return &data, nil
}

// HistoryCursor converts the query cursor into a repository position.
func (q PageQuery) HistoryCursor() (*ports.HistoryCursor, error) {
	data, err := DecodeCursor(q.Cursor)
	if err != nil || data == nil {
		return nil, err
	}

	if data.Field != cursorField {
		return nil, ErrInvalidCursor
	}

	at, err := time.Parse(time.RFC3339Nano, data.Value)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	return &ports.HistoryCursor{CreatedAt: at, ID: data.ID}, nil
}

// HistoryCursorAfter builds the cursor that resumes after rec.
func HistoryCursorAfter(rec domain.TranslationRecord) string {
	return EncodeCursor(&CursorData{
		Field: cursorField,
		Value: rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		ID:    rec.ID,
	})
}
