//go:build ignore

// smoke-api.go exercises a running API instance end to end: health check,
// code request, and the expected rejection paths. It needs no session token
// and leaves no state behind beyond one verification code.
//
// Run with: go run scripts/smoke-api.go [base-url]
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	base := "http://localhost:8080"
	if len(os.Args) > 1 {
		base = os.Args[1]
	}

	hc := &http.Client{Timeout: 5 * time.Second}
	failures := 0

	check := func(name string, got, want int, body string) {
		if got == want {
			fmt.Printf("  ok    %-40s %d\n", name, got)
			return
		}
		failures++
		fmt.Printf("  FAIL  %-40s got %d, want %d\n        %s\n", name, got, want, body)
	}

	status, body := get(hc, base+"/healthz")
	check("GET /healthz", status, http.StatusOK, body)

	status, body = post(hc, base+"/api/auth/send-verification", `{}`)
	check("send-verification without phone", status, http.StatusBadRequest, body)

	status, body = post(hc, base+"/api/auth/send-verification", `{"phoneNumber":"+50255550000"}`)
	check("send-verification", status, http.StatusOK, body)

	status, body = post(hc, base+"/api/auth/verify-code", `{"phoneNumber":"+50255550000","code":"000000"}`)
	check("verify-code with wrong code", status, http.StatusBadRequest, body)

	status, body = get(hc, base+"/api/v1/leads")
	check("leads without token", status, http.StatusUnauthorized, body)

	if failures > 0 {
		fmt.Printf("%d check(s) failed\n", failures)
		os.Exit(1)
	}
	fmt.Println("all checks passed")
}

func get(hc *http.Client, url string) (int, string) {
	resp, err := hc.Get(url)
	if err != nil {
		return 0, err.Error()
	}
	defer resp.Body.Close()
	return resp.StatusCode, readBody(resp.Body)
}

func post(hc *http.Client, url, payload string) (int, string) {
	resp, err := hc.Post(url, "application/json", bytes.NewBufferString(payload))
	if err != nil {
		return 0, err.Error()
	}
	defer resp.Body.Close()
	return resp.StatusCode, readBody(resp.Body)
}

func readBody(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 1<<12))
	var compact bytes.Buffer
	if json.Compact(&compact, raw) == nil {
		return compact.String()
	}
	return string(raw)
}
