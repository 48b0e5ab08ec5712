package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
	"github.com/ironsheep/docscan-mcp/internal/session"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "scan_capture", "scan_crop").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	log := s.log.WithField("tool", params.Name)

	result, err := s.executeTool(context.Background(), params.Name, params.Arguments)
	if err != nil {
		log.WithError(err).Warn("Tool failed")
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}
	log.Debug("Tool completed")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
// Every tool that touches the scan in progress goes through the session
// manager, so edits apply one at a time in arrival order.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Capture
	case "scan_detect":
		return s.handleScanDetect(args)
	case "scan_capture":
		return s.handleScanCapture(ctx, args)

	// Editing
	case "scan_crop":
		return s.handleScanCrop(ctx, args)
	case "scan_enhance":
		return s.edit(ctx, func(sess *session.Session) error {
			_, err := sess.Enhance()
			return err
		})
	case "scan_sharpen":
		return s.edit(ctx, (*session.Session).Sharpen)
	case "scan_rotate":
		return s.edit(ctx, func(sess *session.Session) error {
			_, err := sess.Rotate()
			return err
		})
	case "scan_reset":
		return s.edit(ctx, (*session.Session).Reset)
	case "scan_save":
		return s.handleScanSave(ctx, args)

	// Inspection
	case "scan_preview":
		return s.handleScanPreview(ctx, args)
	case "scan_ocr":
		return s.handleScanOCR(ctx, args)
	case "scan_status":
		return s.handleScanStatus(ctx)
	case "scan_abandon":
		return s.handleScanAbandon(ctx)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments, treating missing arguments as {}.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// loadFrame reads path through the cache and prepares it for detection:
// turned upright when portrait mode is on and capped to the configured
// maximum size. The returned Mat is owned by the caller.
func (s *Server) loadFrame(path string) (gocv.Mat, error) {
	if path == "" {
		return gocv.NewMat(), errors.New("path is required")
	}

	frame, err := s.cache.LoadFrame(path)
	if err != nil {
		return frame, err
	}

	if s.cfg.Portrait {
		upright, err := imaging.Portrait(frame)
		frame.Close()
		if err != nil {
			return upright, err
		}
		frame = upright
	}
	defer frame.Close()

	return imaging.FitWithin(frame, s.cfg.MaxWidth, s.cfg.MaxHeight)
}

// === Capture Handlers ===

type scanDetectArgs struct {
	Path         string `json:"path"`
	Annotate     bool   `json:"annotate"`
	OutlineColor string `json:"outline_color"`
}

type scanDetectResult struct {
	detection.Result
	File    *imaging.FrameInfo     `json:"file"`
	Preview *imaging.PreviewResult `json:"preview,omitempty"`
}

func (s *Server) handleScanDetect(args json.RawMessage) (interface{}, error) {
	var a scanDetectArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	frame, err := s.loadFrame(a.Path)
	defer frame.Close()
	if err != nil {
		return nil, err
	}

	info, err := imaging.LoadFrameInfo(s.cache, a.Path)
	if err != nil {
		return nil, err
	}

	q, found := detection.Detect(frame)
	result := &scanDetectResult{
		Result: detection.NewResult(frame, q, found),
		File:   info,
	}

	if a.Annotate {
		result.Preview, err = annotatedPreview(frame, result.Quad, a.OutlineColor, s.cfg.PreviewSize)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

// annotatedPreview renders frame with q outlined, or plain when q is nil.
func annotatedPreview(frame gocv.Mat, q *geometry.Quad, outline string, maxSize int) (*imaging.PreviewResult, error) {
	if q == nil {
		return imaging.Preview(frame, maxSize)
	}

	annotated, err := detection.Annotate(frame, *q, outline)
	defer annotated.Close()
	if err != nil {
		return nil, err
	}
	return imaging.Preview(annotated, maxSize)
}

type scanCaptureArgs struct {
	Path string `json:"path"`
}

type scanCaptureResult struct {
	Accepted     bool  `json:"accepted"`
	RetryAfterMS int64 `json:"retry_after_ms,omitempty"`
	*detection.Result
}

func (s *Server) handleScanCapture(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a scanCaptureArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	if !s.debounce.Allow() {
		s.log.WithField("path", a.Path).Debug("Capture ignored inside debounce window")
		return &scanCaptureResult{
			Accepted:     false,
			RetryAfterMS: s.debounce.Remaining().Milliseconds(),
		}, nil
	}

	// The file at path may be rewritten between captures.
	s.cache.Evict(a.Path)
	frame, err := s.loadFrame(a.Path)
	s.cache.Evict(a.Path)
	if err != nil {
		frame.Close()
		return nil, err
	}

	q, found := detection.Detect(frame)
	result := detection.NewResult(frame, q, found)

	// The manager owns frame from here on.
	if err := s.sessions.Open(ctx, frame, result.Quad); err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"path":  a.Path,
		"found": found,
	}).Info("Document captured")

	return &scanCaptureResult{Accepted: true, Result: &result}, nil
}

// === Editing Handlers ===

// edit runs fn on the active session and reports the resulting status.
func (s *Server) edit(ctx context.Context, fn func(*session.Session) error) (interface{}, error) {
	var status session.Status
	err := s.sessions.Do(ctx, func(sess *session.Session) error {
		if err := fn(sess); err != nil {
			return err
		}
		status = sess.Status()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

type scanCropArgs struct {
	Quad      *geometry.Quad `json:"quad"`
	QuadSpace *geometry.Size `json:"quad_space"`
}

// Where the committed quad came from.
const (
	quadFromCaller    = "caller"
	quadFromDetection = "detected"
	quadFromFrame     = "full_frame"
)

type scanCropResult struct {
	Quad       geometry.Quad `json:"quad"`
	QuadSource string        `json:"quad_source"`
	session.Status
}

func (s *Server) handleScanCrop(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a scanCropArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.QuadSpace != nil && !a.QuadSpace.Valid() {
		return nil, errors.New("quad_space must have a positive width and height")
	}

	var result scanCropResult
	err := s.sessions.Do(ctx, func(sess *session.Session) error {
		frame := sess.SourceSize()

		switch suggested, ok := sess.Suggested(); {
		case a.Quad != nil:
			q := *a.Quad
			if a.QuadSpace != nil {
				q = geometry.Scale(q, *a.QuadSpace, frame)
			}
			result.Quad = geometry.Order(q)
			result.QuadSource = quadFromCaller
		case ok:
			result.Quad = suggested
			result.QuadSource = quadFromDetection
		default:
			result.Quad = geometry.FullFrame(frame)
			result.QuadSource = quadFromFrame
		}

		if err := sess.Commit(result.Quad); err != nil {
			return err
		}
		result.Status = sess.Status()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type scanSaveArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleScanSave(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a scanSaveArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	return s.edit(ctx, func(sess *session.Session) error {
		return sess.Save(a.Path)
	})
}

// === Inspection Handlers ===

type scanPreviewArgs struct {
	MaxSize int  `json:"max_size"`
	Source  bool `json:"source"`
}

func (s *Server) handleScanPreview(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a scanPreviewArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.MaxSize <= 0 {
		a.MaxSize = s.cfg.PreviewSize
	}

	var preview *imaging.PreviewResult
	err := s.sessions.Do(ctx, func(sess *session.Session) error {
		if a.Source {
			var outline *geometry.Quad
			if q, ok := sess.Suggested(); ok {
				outline = &q
			}
			return sess.ViewSource(func(img gocv.Mat) error {
				var err error
				preview, err = annotatedPreview(img, outline, "", a.MaxSize)
				return err
			})
		}

		return sess.View(func(img gocv.Mat) error {
			var err error
			preview, err = imaging.Preview(img, a.MaxSize)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return preview, nil
}

type scanOCRArgs struct {
	Language string `json:"language"`
	X1       *int   `json:"x1"`
	Y1       *int   `json:"y1"`
	X2       *int   `json:"x2"`
	Y2       *int   `json:"y2"`
}

// region returns the requested OCR region, if all four edges were given.
func (a scanOCRArgs) region() (image.Rectangle, bool, error) {
	set := 0
	for _, v := range []*int{a.X1, a.Y1, a.X2, a.Y2} {
		if v != nil {
			set++
		}
	}
	switch set {
	case 0:
		return image.Rectangle{}, false, nil
	case 4:
		return image.Rect(*a.X1, *a.Y1, *a.X2, *a.Y2), true, nil
	default:
		return image.Rectangle{}, false, errors.New("region needs all of x1, y1, x2 and y2")
	}
}

func (s *Server) handleScanOCR(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a scanOCRArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Language == "" {
		a.Language = s.cfg.OCRLanguage
	}
	r, hasRegion, err := a.region()
	if err != nil {
		return nil, err
	}

	var result *ocr.OCRResult
	err = s.sessions.Do(ctx, func(sess *session.Session) error {
		return sess.View(func(img gocv.Mat) error {
			var err error
			if hasRegion {
				result, err = ocr.ExtractTextFromRegion(img, r, a.Language)
			} else {
				result, err = ocr.ExtractText(img, a.Language)
			}
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type scanStatusResult struct {
	Active bool `json:"active"`
	*session.Status
}

func (s *Server) handleScanStatus(ctx context.Context) (interface{}, error) {
	var status session.Status
	err := s.sessions.Do(ctx, func(sess *session.Session) error {
		status = sess.Status()
		return nil
	})
	if errors.Is(err, session.ErrNoSession) {
		return &scanStatusResult{Active: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &scanStatusResult{Active: true, Status: &status}, nil
}

func (s *Server) handleScanAbandon(ctx context.Context) (interface{}, error) {
	if err := s.sessions.Abandon(ctx); err != nil {
		return nil, err
	}
	return map[string]interface{}{"abandoned": true}, nil
}
