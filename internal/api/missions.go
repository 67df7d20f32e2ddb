package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"mission-tracker/internal/config"
	"mission-tracker/internal/domain"
)

// MissionClient fetches the raw mission dataset published by the stats
// cronjob.
type MissionClient struct {
	url    string
	client *fasthttp.Client
}

func NewMissionClient(cfg *config.Config) *MissionClient {
	return &MissionClient{
		url: cfg.MissionsURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// GetMissions downloads and decodes the dataset. Entries that fail to decode
// individually degrade inside Participant/FlexNumber parsing; only transport
// and top-level shape errors surface here.
func (c *MissionClient) GetMissions(ctx context.Context) ([]domain.RawMission, error) {
	return doRequest[[]domain.RawMission](ctx, c, c.url)
}

func doRequest[T any](ctx context.Context, client *MissionClient, url string) (T, error) {
	var result T

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return result, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return result, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return result, fmt.Errorf("upstream error: %d", resp.StatusCode())
	}

	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return result, err
	}
	return result, nil
}
