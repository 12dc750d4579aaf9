package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/pixynode/internal/api/models"
)

// registerControlRoutes registers the LED and RC servo endpoints.
func (s *Server) registerControlRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "set-led",
		Method:      http.MethodPut,
		Path:        "/api/led",
		Summary:     "Set LED",
		Description: "Set the camera RGB LED. The detection indicator overwrites it on the next colour change when enabled.",
		Tags:        []string{"controls"},
		Security:    withAuth(),
		Errors:      []int{401, 502},
	}, func(_ context.Context, input *models.LEDRequest) (*struct{}, error) {
		b := input.Body
		if err := s.camera.SetLED(b.Red, b.Green, b.Blue); err != nil {
			return nil, deviceError("Failed to set LED", err)
		}
		return &struct{}{}, nil
	})

	if mgr := s.options.LEDManager; mgr != nil {
		huma.Register(s.api, huma.Operation{
			OperationID: "get-led",
			Method:      http.MethodGet,
			Path:        "/api/led",
			Summary:     "Get LED",
			Description: "Get the colour last shown by the detection indicator",
			Tags:        []string{"controls"},
			Security:    withAuth(),
			Errors:      []int{401},
		}, func(_ context.Context, _ *struct{}) (*models.LEDResponse, error) {
			c := mgr.Current()
			return &models.LEDResponse{
				Body: models.LEDData{
					Backend: mgr.GetController().Name(),
					Red:     c.Red,
					Green:   c.Green,
					Blue:    c.Blue,
				},
			}, nil
		})
	} else {
		s.logger.Debug("LED manager not available, skipping LED status route")
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "get-servo",
		Method:      http.MethodGet,
		Path:        "/api/servos/{channel}",
		Summary:     "Get Servo Position",
		Description: "Read the position of an RC servo channel",
		Tags:        []string{"controls"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 502},
	}, func(_ context.Context, input *models.ServoInput) (*models.ServoResponse, error) {
		pos, err := s.camera.ServoPosition(input.Channel)
		if err != nil {
			return nil, deviceError("Failed to read servo", err)
		}
		return &models.ServoResponse{
			Body: models.ServoData{Channel: input.Channel, Position: pos},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-servo",
		Method:      http.MethodPut,
		Path:        "/api/servos/{channel}",
		Summary:     "Set Servo Position",
		Description: "Move an RC servo channel to a position between 0 and 999",
		Tags:        []string{"controls"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 502},
	}, func(_ context.Context, input *models.ServoRequest) (*models.ServoResponse, error) {
		if err := s.camera.SetServoPosition(input.Channel, input.Body.Position); err != nil {
			return nil, deviceError("Failed to move servo", err)
		}
		return &models.ServoResponse{
			Body: models.ServoData{Channel: input.Channel, Position: int32(input.Body.Position)},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-servo-frequency",
		Method:      http.MethodPut,
		Path:        "/api/servos",
		Summary:     "Set Servo Frequency",
		Description: "Set the RC servo PWM frequency between 20 and 300 Hz",
		Tags:        []string{"controls"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 502},
	}, func(_ context.Context, input *models.ServoFrequencyRequest) (*struct{}, error) {
		if err := s.camera.SetServoFrequency(input.Body.Frequency); err != nil {
			return nil, deviceError("Failed to set servo frequency", err)
		}
		return &struct{}{}, nil
	})
}
