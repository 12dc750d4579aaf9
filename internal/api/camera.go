package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/pixynode/internal/api/models"
	"github.com/smazurov/pixynode/internal/config"
	"github.com/smazurov/pixynode/internal/device"
	"github.com/smazurov/pixynode/internal/events"
)

// SettingsSourceAPI marks settings applied through PATCH /api/camera.
const SettingsSourceAPI = "api"

// PublishSettingsApplied reports a settings application on the bus,
// splitting a joined error into one entry per failed field.
func PublishSettingsApplied(bus *events.Bus, source string, err error) {
	ev := events.SettingsAppliedEvent{
		Source:    source,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if err != nil {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				ev.Errors = append(ev.Errors, e.Error())
			}
		} else {
			ev.Errors = []string{err.Error()}
		}
	}
	bus.Publish(ev)
}

func (s *Server) registerCameraRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-camera-settings",
		Method:      http.MethodGet,
		Path:        "/api/camera",
		Summary:     "Get Camera Settings",
		Description: "Read every camera setting back from the device",
		Tags:        []string{"camera"},
		Security:    withAuth(),
		Errors:      []int{401, 502},
	}, func(_ context.Context, _ *struct{}) (*models.CameraSettingsResponse, error) {
		settings, err := device.ReadSettings(s.camera)
		if err != nil {
			return nil, deviceError("Failed to read camera settings", err)
		}
		return &models.CameraSettingsResponse{Body: settings}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "update-camera-settings",
		Method:      http.MethodPatch,
		Path:        "/api/camera",
		Summary:     "Update Camera Settings",
		Description: "Apply the fields present in the body; omitted fields are left unchanged",
		Tags:        []string{"camera"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 502},
	}, func(_ context.Context, input *models.CameraSettingsRequest) (*models.CameraSettingsResponse, error) {
		err := device.ApplySettings(s.camera, input.Body)
		PublishSettingsApplied(s.eventBus, SettingsSourceAPI, err)
		if err != nil {
			return nil, deviceError("Failed to apply camera settings", err)
		}

		s.logger.Info("Camera settings applied", "source", SettingsSourceAPI)
		return &models.CameraSettingsResponse{Body: input.Body}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-firmware-version",
		Method:      http.MethodGet,
		Path:        "/api/camera/firmware",
		Summary:     "Firmware Version",
		Description: "Query the camera firmware version",
		Tags:        []string{"camera"},
		Security:    withAuth(),
		Errors:      []int{401, 502},
	}, func(_ context.Context, _ *struct{}) (*models.FirmwareResponse, error) {
		v, err := s.camera.FirmwareVersion()
		if err != nil {
			return nil, deviceError("Failed to query firmware version", err)
		}
		return &models.FirmwareResponse{
			Body: models.FirmwareData{
				Major:   v.Major,
				Minor:   v.Minor,
				Build:   v.Build,
				Version: v.String(),
			},
		}, nil
	})

	if path := s.options.SettingsFile; path != "" {
		huma.Register(s.api, huma.Operation{
			OperationID: "save-camera-settings",
			Method:      http.MethodPost,
			Path:        "/api/camera/save",
			Summary:     "Save Camera Settings",
			Description: "Read every camera setting from the device and write it to the settings profile",
			Tags:        []string{"camera"},
			Security:    withAuth(),
			Errors:      []int{401, 500, 502},
		}, func(_ context.Context, _ *struct{}) (*models.CameraSettingsResponse, error) {
			settings, err := device.ReadSettings(s.camera)
			if err != nil {
				return nil, deviceError("Failed to read camera settings", err)
			}
			if err := config.SaveSettings(path, settings); err != nil {
				return nil, huma.Error500InternalServerError("Failed to save camera settings", err)
			}

			s.logger.Info("Camera settings saved", "path", path)
			return &models.CameraSettingsResponse{Body: settings}, nil
		})
	}
}
