package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"forecast-viewer/models"
)

const openWeatherMapBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherMapProvider fetches the 5-day / 3-hour forecast from OpenWeatherMap
type OpenWeatherMapProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Ensure OpenWeatherMapProvider implements ForecastSource
var _ ForecastSource = (*OpenWeatherMapProvider)(nil)

// NewOpenWeatherMapProvider creates a new OpenWeatherMap provider.
// An empty baseURL selects the public API.
func NewOpenWeatherMapProvider(apiKey, baseURL string) *OpenWeatherMapProvider {
	if baseURL == "" {
		baseURL = openWeatherMapBaseURL
	}
	return &OpenWeatherMapProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name returns the provider name
func (p *OpenWeatherMapProvider) Name() string {
	return "OpenWeatherMap"
}

// openWeatherMapForecastResponse is the subset of the forecast payload we read
type openWeatherMapForecastResponse struct {
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"list"`
}

// FetchForecast fetches the forecast for a city or a coordinate pair.
// No units parameter is sent, so temperatures come back in Kelvin.
func (p *OpenWeatherMapProvider) FetchForecast(ctx context.Context, q Query) (models.ForecastSet, error) {
	params := url.Values{}
	if q.Coordinates != nil {
		params.Add("lat", strconv.FormatFloat(q.Coordinates.Latitude, 'f', -1, 64))
		params.Add("lon", strconv.FormatFloat(q.Coordinates.Longitude, 'f', -1, 64))
	} else {
		params.Add("q", q.City)
	}
	params.Add("appid", p.apiKey)

	endpoint := fmt.Sprintf("%s/forecast", p.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return models.ForecastSet{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return models.ForecastSet{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ForecastSet{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return models.ForecastSet{}, fmt.Errorf("%w %d: %s", ErrStatus, resp.StatusCode, string(body))
	}

	var response openWeatherMapForecastResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return models.ForecastSet{}, fmt.Errorf("failed to parse response: %w", err)
	}

	forecast := models.ForecastSet{
		Provider: p.Name(),
		Location: joinLocation(response.City.Name, response.City.Country, q),
		Samples:  make([]models.ForecastSample, 0, len(response.List)),
		Updated:  time.Now(),
	}

	for _, item := range response.List {
		description := ""
		if len(item.Weather) > 0 {
			description = item.Weather[0].Description
		}

		forecast.Samples = append(forecast.Samples, models.ForecastSample{
			Timestamp:         item.Dt,
			TemperatureKelvin: item.Main.Temp,
			Description:       description,
		})
	}

	return forecast, nil
}

// joinLocation formats "Name,Country", falling back to the query text
func joinLocation(name, country string, q Query) string {
	switch {
	case name == "":
		return q.String()
	case country == "":
		return name
	default:
		return fmt.Sprintf("%s,%s", name, country)
	}
}
