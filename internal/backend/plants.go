package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"plant_monitor/internal/models"
	"plant_monitor/internal/telemetry"

	"github.com/spf13/cast"
)

const plantsPath = "plantas"

type readingWire struct {
	Temperatura any `json:"temperatura"`
	Umidade     any `json:"umidade"`
}

type plantWire struct {
	ID                 any          `json:"id"`
	Name               string       `json:"name_planta"`
	Description        string       `json:"description"`
	Status             any          `json:"status"`
	LastMonitoringPlan *readingWire `json:"last_monitoring_plan"`
}

func (w plantWire) toPlant() (models.Plant, error) {
	id, err := cast.ToIntE(w.ID)
	if err != nil {
		return models.Plant{}, fmt.Errorf("plant id %v: %w", w.ID, err)
	}
	p := models.Plant{
		ID:          id,
		Name:        w.Name,
		Description: w.Description,
		Status:      models.PlantInactive,
	}
	if st, err := cast.ToIntE(w.Status); err == nil && st == int(models.PlantActive) {
		p.Status = models.PlantActive
	}
	if lm := w.LastMonitoringPlan; lm != nil {
		p.LastReading = &models.Reading{
			Temperature: floatPtr(lm.Temperatura),
			Humidity:    floatPtr(lm.Umidade),
		}
	}
	return p, nil
}

// ListPlants returns every plant known to the backend. Both {"data": [...]}
// and bare array bodies are accepted.
func (c *Client) ListPlants(ctx context.Context) ([]models.Plant, error) {
	u := c.endpoint(plantsPath)
	resp, err := c.doJSON(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	wires, err := decodePlantList(resp.body)
	if err != nil {
		return nil, &telemetry.FetchError{Kind: telemetry.KindMalformedPayload, Op: http.MethodGet + " " + u.Path, Err: err}
	}

	plants := make([]models.Plant, 0, len(wires))
	for _, w := range wires {
		p, err := w.toPlant()
		if err != nil {
			c.logw("plant_record_skipped", "err", err)
			continue
		}
		plants = append(plants, p)
	}
	return plants, nil
}

func decodePlantList(body []byte) ([]plantWire, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var list []plantWire
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, fmt.Errorf("decode plant list: %w", err)
		}
		return list, nil
	}
	var env struct {
		Data []plantWire `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode plant list: %w", err)
	}
	return env.Data, nil
}

// SetPlantStatus switches a plant between active and inactive.
func (c *Client) SetPlantStatus(ctx context.Context, id int, status models.PlantStatus) error {
	u := c.endpoint(plantsPath, strconv.Itoa(id))
	_, err := c.doJSON(ctx, http.MethodPut, u, map[string]int{"status": int(status)})
	return err
}

// CreatePlant registers a plant with a multipart form.
func (c *Client) CreatePlant(ctx context.Context, p models.NewPlant) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"name", p.Name},
		{"description", p.Description},
		{"interval_type", strconv.Itoa(int(p.IntervalType))},
		{"interval_time", strconv.Itoa(p.IntervalValue)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return fmt.Errorf("write form field %s: %w", f[0], err)
		}
	}
	if p.Image != nil {
		fw, err := mw.CreateFormFile("image", p.Image.Filename)
		if err != nil {
			return fmt.Errorf("create image part: %w", err)
		}
		if _, err := fw.Write(p.Image.Content); err != nil {
			return fmt.Errorf("write image part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	u := c.endpoint(plantsPath)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), &buf)
	if err != nil {
		return fmt.Errorf("build POST %s: %w", u.Path, err)
	}
	req.Header.Set(contentTypeKey, mw.FormDataContentType())
	req.Header.Set("Accept", jsonMediaType)
	_, err = c.do(req)
	return err
}
