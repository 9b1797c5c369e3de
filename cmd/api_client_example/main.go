package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

type viewResponse struct {
	HasData      bool    `json:"hasData"`
	Location     string  `json:"location"`
	SelectedDate *string `json:"selectedDate"`
	DayIndex     int     `json:"dayIndex"`
	DayCount     int     `json:"dayCount"`
	Samples      []struct {
		Time        string `json:"time"`
		Description string `json:"description"`
		Temperature string `json:"temperature"`
	} `json:"samples"`
	CanGoNext bool `json:"canGoNext"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the forecast API")
	city := flag.String("city", "London", "City to search for")
	flag.Parse()

	fmt.Println("Forecast API Client Example")
	fmt.Println("===========================")

	client := &http.Client{Timeout: 15 * time.Second}

	fmt.Printf("\nSearching for %s...\n", *city)
	view, err := call(client, http.MethodGet, *baseURL+"/api/forecast/search?city="+url.QueryEscape(*city))
	if err != nil {
		fmt.Printf("Error searching: %v\n", err)
		os.Exit(1)
	}

	for {
		printDay(view)
		if !view.CanGoNext {
			break
		}
		view, err = call(client, http.MethodPost, *baseURL+"/api/forecast/next")
		if err != nil {
			fmt.Printf("Error moving to next day: %v\n", err)
			os.Exit(1)
		}
	}
}

func call(client *http.Client, method, target string) (viewResponse, error) {
	req, err := http.NewRequest(method, target, nil)
	if err != nil {
		return viewResponse{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return viewResponse{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return viewResponse{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return viewResponse{}, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var view viewResponse
	if err := json.Unmarshal(body, &view); err != nil {
		return viewResponse{}, err
	}
	return view, nil
}

func printDay(view viewResponse) {
	if !view.HasData || view.SelectedDate == nil {
		fmt.Println("No weather data available")
		return
	}
	fmt.Printf("\n%s: day %d of %d (%s)\n", view.Location, view.DayIndex+1, view.DayCount, *view.SelectedDate)
	for _, s := range view.Samples {
		fmt.Printf("  %s  %-20s %s\n", s.Time, s.Description, s.Temperature)
	}
}
