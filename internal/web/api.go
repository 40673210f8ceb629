package web

import "github.com/JonMunkholm/sheetswap/internal/core"

// batchResponse is the JSON form of a processed upload.
type batchResponse struct {
	ID         string         `json:"id"`
	Files      []fileResponse `json:"files"`
	Messages   []core.Message `json:"messages"`
	Failed     int            `json:"failed"`
	DurationMS int64          `json:"duration_ms"`
}

type fileResponse struct {
	Index      int            `json:"index"`
	Name       string         `json:"name"`
	Format     string         `json:"format,omitempty"`
	Columns    []string       `json:"columns,omitempty"`
	LoadedRows int            `json:"loaded_rows"`
	Preview    [][]string     `json:"preview,omitempty"`
	Result     [][]string     `json:"result,omitempty"`
	Chart      *core.BarChart `json:"chart,omitempty"`
	Messages   []core.Message `json:"messages"`
	Error      *ErrorResponse `json:"error,omitempty"`
}

func newBatchResponse(b *core.BatchResult) batchResponse {
	out := batchResponse{
		ID:         b.ID,
		Files:      make([]fileResponse, len(b.Files)),
		Messages:   b.Messages,
		Failed:     b.Failed(),
		DurationMS: b.Duration.Milliseconds(),
	}
	for i, f := range b.Files {
		out.Files[i] = newFileResponse(f)
	}
	return out
}

func newFileResponse(f *core.FileResult) fileResponse {
	resp := fileResponse{
		Index:      f.Index,
		Name:       f.Name,
		Format:     string(f.Format),
		Columns:    f.Columns,
		LoadedRows: f.LoadedRows,
		Chart:      f.Chart,
		Messages:   f.Messages,
	}
	if resp.Messages == nil {
		resp.Messages = []core.Message{}
	}
	if f.Preview != nil {
		resp.Preview = f.Preview.Records()
	}
	if f.Table != nil {
		resp.Result = f.Table.Records()
	}
	if f.Err != nil {
		msg := core.MapError(f.Err)
		resp.Error = &ErrorResponse{
			Error:   f.Err.Error(),
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		}
	}
	return resp
}
