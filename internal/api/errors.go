package api

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/pixynode/pkg/pixy"
	"github.com/smazurov/pixynode/pkg/pixy/blocks"
	"github.com/smazurov/pixynode/pkg/pixy/chirp"
	"github.com/smazurov/pixynode/pkg/pixy/frame"
)

// deviceError maps a camera error to an HTTP error.
//
//	invalid parameter or name -> 400
//	frame format or geometry  -> 422
//	other device status       -> 502
//	capacity or short reply   -> 502
func deviceError(msg string, err error) error {
	var statusErr *pixy.StatusError
	switch {
	case errors.Is(err, pixy.ErrInvalidParameter),
		errors.Is(err, chirp.ErrInvalidName),
		errors.Is(err, chirp.ErrEmptyName):
		return huma.Error400BadRequest(msg, err)
	case errors.Is(err, frame.ErrFormat),
		errors.Is(err, frame.ErrDimensions),
		errors.Is(err, frame.ErrShortFrame):
		return huma.Error422UnprocessableEntity(msg, err)
	case errors.As(err, &statusErr):
		return huma.Error502BadGateway(msg+": "+statusErr.Text(), err)
	case errors.Is(err, blocks.ErrCapacity),
		errors.Is(err, frame.ErrCapacity),
		errors.Is(err, chirp.ErrShortReply):
		return huma.Error502BadGateway(msg, err)
	default:
		return huma.Error500InternalServerError(msg, err)
	}
}
