package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"forecast-viewer/models"
)

const (
	weatherAPIBaseURL = "https://api.weatherapi.com/v1"

	// weatherAPIDays matches the 5-day horizon of the OpenWeatherMap endpoint
	weatherAPIDays = 5

	// weatherAPIStep keeps every third hourly entry so both providers yield 3-hour samples
	weatherAPIStep = 3
)

// WeatherAPIProvider fetches hourly forecasts from WeatherAPI and thins them to 3-hour samples
type WeatherAPIProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Ensure WeatherAPIProvider implements ForecastSource
var _ ForecastSource = (*WeatherAPIProvider)(nil)

// NewWeatherAPIProvider creates a new WeatherAPI provider.
// An empty baseURL selects the public API.
func NewWeatherAPIProvider(apiKey, baseURL string) *WeatherAPIProvider {
	if baseURL == "" {
		baseURL = weatherAPIBaseURL
	}
	return &WeatherAPIProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Name returns the provider name
func (p *WeatherAPIProvider) Name() string {
	return "WeatherAPI"
}

// FetchForecast fetches the forecast for a city or a coordinate pair
func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, q Query) (models.ForecastSet, error) {
	endpoint := fmt.Sprintf("%s/forecast.json", p.baseURL)
	params := url.Values{}
	// WeatherAPI accepts "lat,lon" in the same q parameter as city names
	params.Add("q", q.String())
	params.Add("key", p.apiKey)
	params.Add("days", fmt.Sprintf("%d", weatherAPIDays))

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

	var response struct {
		Location struct {
			Name    string `json:"name"`
			Country string `json:"country"`
		} `json:"location"`
		Forecast struct {
			ForecastDay []struct {
				Hour []struct {
					TimeEpoch int64   `json:"time_epoch"`
					TempC     float64 `json:"temp_c"`
					Condition struct {
						Text string `json:"text"`
					} `json:"condition"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := json.Unmarshal(body, &response); err != nil {
		return models.ForecastSet{}, fmt.Errorf("failed to parse response: %w", err)
	}

	forecast := models.ForecastSet{
		Provider: p.Name(),
		Location: joinLocation(response.Location.Name, response.Location.Country, q),
		Samples:  []models.ForecastSample{},
		Updated:  time.Now(),
	}

	for _, day := range response.Forecast.ForecastDay {
		for i, hour := range day.Hour {
			if i%weatherAPIStep != 0 {
				continue
			}
			forecast.Samples = append(forecast.Samples, models.ForecastSample{
				Timestamp:         hour.TimeEpoch,
				TemperatureKelvin: hour.TempC + 273.15,
				Description:       hour.Condition.Text,
			})
		}
	}

	return forecast, nil
}
