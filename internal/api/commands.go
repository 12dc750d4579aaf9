package api

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/pixynode/internal/api/models"
	"github.com/smazurov/pixynode/pkg/pixy/chirp"
)

// typeRange returns the inclusive value bounds of t.
func typeRange(t chirp.Type) (lo, hi int64) {
	switch t {
	case chirp.TypeUint8:
		return 0, math.MaxUint8
	case chirp.TypeInt8:
		return math.MinInt8, math.MaxInt8
	case chirp.TypeUint16:
		return 0, math.MaxUint16
	case chirp.TypeInt16:
		return math.MinInt16, math.MaxInt16
	case chirp.TypeUint32:
		return 0, math.MaxUint32
	default:
		return math.MinInt32, math.MaxInt32
	}
}

// ToValue converts a JSON argument to a chirp value, rejecting
// out-of-range numbers instead of truncating them.
func ToValue(tv models.TypedValue) (chirp.Value, error) {
	t, err := chirp.ParseType(tv.Type)
	if err != nil {
		return chirp.Value{}, err
	}
	if lo, hi := typeRange(t); tv.Value < lo || tv.Value > hi {
		return chirp.Value{}, fmt.Errorf("value %d out of range for %s", tv.Value, t)
	}
	return chirp.New(t, tv.Value), nil
}

// FromValue converts a chirp value to its JSON form.
func FromValue(v chirp.Value) models.TypedValue {
	return models.TypedValue{Type: v.Type().String(), Value: v.Int64()}
}

func (s *Server) registerCommandRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "invoke-command",
		Method:      http.MethodPost,
		Path:        "/api/commands/{name}",
		Summary:     "Invoke Command",
		Description: "Send an arbitrary named command with typed arguments and decode the requested result slots",
		Tags:        []string{"commands"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 502},
	}, func(_ context.Context, input *models.CommandRequest) (*models.CommandResponse, error) {
		args := make([]chirp.Value, 0, len(input.Body.Args))
		for i, a := range input.Body.Args {
			v, err := ToValue(a)
			if err != nil {
				return nil, huma.Error400BadRequest(fmt.Sprintf("Invalid argument %d", i), err)
			}
			args = append(args, v)
		}

		returns := make([]chirp.Type, 0, len(input.Body.Returns))
		for i, name := range input.Body.Returns {
			t, err := chirp.ParseType(name)
			if err != nil {
				return nil, huma.Error400BadRequest(fmt.Sprintf("Invalid return type %d", i), err)
			}
			returns = append(returns, t)
		}

		resp, err := s.camera.Invoke(input.Name, args, returns...)
		if err != nil {
			return nil, deviceError("Command failed", err)
		}

		values := make([]models.TypedValue, 0, len(resp.Values))
		for _, v := range resp.Values {
			values = append(values, FromValue(v))
		}
		return &models.CommandResponse{
			Body: models.CommandData{
				Command: input.Name,
				Status:  resp.Status,
				Values:  values,
			},
		}, nil
	})
}
