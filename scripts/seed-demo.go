//go:build ignore
// +build ignore

// Seeds a running server with demo accounts and sales through the HTTP API.
//
// Usage:
//
//	go run scripts/seed-demo.go
//	API_URL=http://localhost:9000 go run scripts/seed-demo.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

var demoUsers = []struct {
	name     string
	email    string
	password string
}{
	{"Alex Rivera", "alex@demo.local", "demo-password-1"},
	{"Sam Chen", "sam@demo.local", "demo-password-2"},
}

var demoSales = []map[string]any{
	{
		"customerName": "Jane Doe",
		"phoneNumber":  "555-123-4567",
		"date":         time.Now().AddDate(0, 0, -7).Format(time.RFC3339),
		"products": []map[string]any{
			{"name": "Screen Protector", "quantity": 2, "price": 19.99, "category": "accessory"},
			{"name": "USB-C Cable", "quantity": 1, "price": 12.50, "category": "accessory"},
		},
	},
	{
		"customerName": "Maria Garcia",
		"phoneNumber":  "444-555-6666",
		"date":         time.Now().AddDate(0, 0, -3).Format(time.RFC3339),
		"products": []map[string]any{
			{"name": "Unlimited Plan Activation", "quantity": 1, "price": 45, "category": "activation"},
			{"name": "Device Protection Plan", "quantity": 1, "price": 12.99, "category": "protection"},
		},
	},
	{
		"customerName": "John Smith",
		"phoneNumber":  "555-987-6543",
		"date":         time.Now().AddDate(0, 0, -1).Format(time.RFC3339),
		"products": []map[string]any{
			{"name": "Wall Charger", "quantity": 2, "price": 24.99, "category": "accessory"},
			{"name": "Phone Upgrade", "quantity": 1, "price": 199.99, "category": "upgrade"},
		},
	},
}

func main() {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8090"
	}
	log.Printf("Seeding demo data against %s", apiURL)

	for _, u := range demoUsers {
		token, err := registerOrLogin(apiURL, u.name, u.email, u.password)
		if err != nil {
			log.Fatalf("Failed to sign in %s: %v", u.email, err)
		}
		log.Printf("Signed in %s", u.email)

		for _, sale := range demoSales {
			if err := postJSON(apiURL+"/api/sales/", token, sale, nil); err != nil {
				log.Fatalf("Failed to create sale for %s: %v", u.email, err)
			}
		}
		log.Printf("Created %d sales for %s", len(demoSales), u.email)
	}

	log.Println("Done.")
}

func registerOrLogin(apiURL, name, email, password string) (string, error) {
	var result struct {
		Token string `json:"token"`
	}
	err := postJSON(apiURL+"/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": password,
	}, &result)
	if err == nil {
		return result.Token, nil
	}

	// Already registered from a previous run; log in instead.
	err = postJSON(apiURL+"/api/auth/login", "", map[string]string{
		"email": email, "password": password,
	}, &result)
	if err != nil {
		return "", err
	}
	return result.Token, nil
}

func postJSON(url, token string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
