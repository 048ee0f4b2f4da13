package sms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"
)

// Client posts outbound SMS messages to the configured gateway.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type sendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type sendResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: os.Getenv("SMS_GATEWAY_URL"),
		apiKey:  os.Getenv("SMS_API_KEY"),
	}
}

// SendOTP delivers a registration OTP to the given phone number.
func (c *Client) SendOTP(phone, code string) error {
	if c.baseURL == "" {
		return errors.New("SMS_GATEWAY_URL is not set")
	}

	message := fmt.Sprintf("Your pothole reporting verification code is %s. It expires in 5 minutes.", code)
	body, err := json.Marshal(sendRequest{Phone: phone, Message: message})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequest("POST", c.baseURL+"/sms/send/", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return errors.New("SMS gateway returned non-OK status: " + resp.Status)
	}

	var apiResp sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return err
	}
	if apiResp.Status != "success" {
		return fmt.Errorf("SMS gateway rejected message: %s", apiResp.Message)
	}

	return nil
}
