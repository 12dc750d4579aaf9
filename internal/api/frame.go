package api

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/pixynode/internal/api/models"
	"github.com/smazurov/pixynode/pkg/pixy/frame"
)

func (s *Server) registerFrameRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "capture-frame",
		Method:      http.MethodGet,
		Path:        "/api/frame",
		Summary:     "Capture Frame",
		Description: "Grab a raw Bayer frame, demosaic it and return a PNG. The image is two pixels smaller than the window in each dimension.",
		Tags:        []string{"frame"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 422, 502},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "PNG image",
				Content: map[string]*huma.MediaType{
					"image/png": {},
				},
			},
		},
	}, func(_ context.Context, input *models.FrameRequest) (*models.FrameResponse, error) {
		order, err := frame.ParseChannelOrder(input.Order)
		if err != nil {
			return nil, huma.Error400BadRequest("Invalid channel order", err)
		}

		req := frame.Request{
			Mode:   frame.ModeBayer,
			X:      input.X,
			Y:      input.Y,
			Width:  input.Width,
			Height: input.Height,
		}

		// Identical requests in flight share one capture.
		key := fmt.Sprintf("%d,%d,%d,%d,%s", req.X, req.Y, req.Width, req.Height, order)
		v, err, shared := s.frames.Do(key, func() (any, error) {
			return s.encodeFrame(req, order)
		})
		if err != nil {
			return nil, err
		}
		if shared {
			s.logger.Debug("Frame capture shared", "window", key)
		}

		enc := v.(encodedFrame)
		return &models.FrameResponse{
			ContentType: "image/png",
			RenderTime:  enc.renderTime.String(),
			Body:        enc.png,
		}, nil
	})
}

type encodedFrame struct {
	png        []byte
	renderTime time.Duration
}

func (s *Server) encodeFrame(req frame.Request, order frame.ChannelOrder) (encodedFrame, error) {
	capture, err := s.camera.CaptureFrame(req, order)
	if err != nil {
		return encodedFrame{}, deviceError("Failed to capture frame", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, capture.Image); err != nil {
		return encodedFrame{}, huma.Error500InternalServerError("Failed to encode frame", err)
	}
	return encodedFrame{png: buf.Bytes(), renderTime: capture.RenderTime}, nil
}
