package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gitlab.com/dirk.krummacker/contacts-book/internal/randomgen"
	public "gitlab.com/dirk.krummacker/contacts-book/pkg/model"
)

// client sends authorized requests to the contacts service.
type client struct {
	baseURL     string
	accessToken string
}

// Usage example on the command line:
// > go run main.go -url=http://localhost:8080 -sizes=100,1000
func main() {
	baseURL := flag.String("url", "http://localhost:8080", "the base URL of the contacts service")
	sizesFlag := flag.String("sizes", "1000,5000,10000", "comma separated numbers of contacts per round")
	flag.Parse()

	c := &client{baseURL: *baseURL}
	c.signupAndLogin()

	fmt.Println()
	fmt.Println("  Elements      POST       PUT       GET    DELETE ")
	fmt.Println("---------------------------------------------------")
	for _, loops := range parseSizes(*sizesFlag) {
		fmt.Printf("%10d", loops)
		var ids []int64
		{
			// POST requests
			var duration int64
			for i := 0; i < loops; i++ {
				id, d := c.sendPostRequest(randomgen.PickContact())
				ids = append(ids, id)
				duration += d
			}
			fmt.Printf("%10d", duration/int64(loops*1000))
		}
		{
			// PUT requests
			f := func(id int64) int64 {
				body := fmt.Sprintf(`{"phone": %q}`, randomgen.PickPhone())
				return c.sendIDRequest(id, http.MethodPut, strings.NewReader(body))
			}
			callInLoop(ids, f)
		}
		{
			// GET requests
			f := func(id int64) int64 {
				return c.sendIDRequest(id, http.MethodGet, nil)
			}
			callInLoop(ids, f)
		}
		{
			// DELETE requests
			f := func(id int64) int64 {
				return c.sendIDRequest(id, http.MethodDelete, nil)
			}
			callInLoop(ids, f)
		}
		fmt.Println()
	}
}

func parseSizes(s string) []int {
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		var n int
		if _, err := fmt.Sscanf(strings.TrimSpace(part), "%d", &n); err != nil || n < 1 {
			panic(fmt.Sprintf("invalid size %q", part))
		}
		sizes = append(sizes, n)
	}
	return sizes
}

// signupAndLogin creates a fresh account for this run and keeps its access token.
func (c *client) signupAndLogin() {
	password := fmt.Sprintf("pw%05d", rand.IntN(100000))
	user := public.UserSchema{
		Username: randomgen.PickFirstName(),
		Email:    randomgen.UniqueEmail("loadtest"),
		Password: password,
	}
	body, _ := json.Marshal(user)
	res, _ := c.send(http.MethodPost, "/auth/signup", "application/json", bytes.NewReader(body))
	if res.StatusCode != http.StatusCreated {
		panic(fmt.Sprintf("signup failed with %s", res.Status))
	}

	form := url.Values{"username": {user.Email}, "password": {password}}
	res, resBody := c.send(http.MethodPost, "/auth/login", "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	if res.StatusCode != http.StatusOK {
		panic(fmt.Sprintf("login failed with %s", res.Status))
	}
	var tokens public.TokenResponse
	if err := json.Unmarshal(resBody, &tokens); err != nil {
		fmt.Println("could not unmarshal JSON", err)
		panic(err)
	}
	c.accessToken = tokens.AccessToken
}

func callInLoop(ids []int64, f func(id int64) int64) {
	shuffled := append([]int64(nil), ids...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	var duration int64
	for _, id := range shuffled {
		duration += f(id)
	}
	fmt.Printf("%10d", duration/int64(len(ids)*1000))
}

func (c *client) sendPostRequest(contact public.ContactSchema) (int64, int64) {
	body, err := json.Marshal(contact)
	if err != nil {
		panic(err)
	}
	before := time.Now()
	_, resBody := c.send(http.MethodPost, "/contacts", "application/json", bytes.NewReader(body))
	duration := time.Since(before).Nanoseconds()
	var created public.ContactResponse
	if err := json.Unmarshal(resBody, &created); err != nil {
		fmt.Println("could not unmarshal JSON", err)
		panic(err)
	}
	return created.Id, duration
}

func (c *client) sendIDRequest(id int64, method string, body io.Reader) int64 {
	before := time.Now()
	c.send(method, fmt.Sprintf("/contacts/%d", id), "application/json", body)
	return time.Since(before).Nanoseconds()
}

func (c *client) send(method string, path string, contentType string, body io.Reader) (*http.Response, []byte) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		fmt.Println("could not create request", err)
		panic(err)
	}
	req.Header.Set("Content-Type", contentType)
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Println("could not read response body", err)
		panic(err)
	}
	return res, resBody
}
