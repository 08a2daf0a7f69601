package util

import (
	"crypto/rand"
	"io"
	"io/ioutil"
	"log"
	"math/big"
	"net"
	"net/http"
	"time"

	"github.com/nats-io/nuid"
	"github.com/pkg/errors"
	hashids "github.com/speps/go-hashids"
)

//
// create an http client with sensible dial/handshake limits and the
// given overall timeout. long-lived callers should hold on to the
// client to get connection reuse between requests.
//
func NewNetClient(timeout time.Duration) *http.Client {

	netTransport := &http.Transport{
		Dial: (&net.Dialer{
			Timeout: 10 * time.Second,
		}).Dial,
		TLSHandshakeTimeout: 2 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: netTransport,
	}
}

//
// generate a short useful unique name - hashid in this case
//
func GenerateName() string {

	name := "checker"

	// generate a random number
	number0, err := rand.Int(rand.Reader, big.NewInt(10000000))
	if err != nil {
		log.Println("error auto-generating name: ", err)
		return name
	}

	hd := hashids.NewData()
	hd.Salt = "resistor-checker random name generator 2021"
	hd.MinLength = 5
	h, err := hashids.NewWithData(hd)
	if err != nil {
		log.Println("error auto-generating name: ", err)
		return name
	}
	e, err := h.EncodeInt64([]int64{number0.Int64()})
	if err != nil {
		log.Println("error encoding auto-generated name: ", err)
		return name
	}
	name = e

	return name

}

//
// generate a unique id - nuid in this case
//
func GenerateID() string {

	return nuid.Next()

}

//
// Makes a network call to a collaborating service and returns the
// response status and payload bytes. The error is only non-nil when the
// call itself could not be made or the response body not read - status
// interpretation is left to the caller, which may care about the body
// of a failed request too.
//
// client - the http client to call through (see NewNetClient)
// method - http method to invoke (post/put/get etc.)
// header - map of headers to include in request
// body - reader for any content to supply as request body
//
func Fetch(client *http.Client, method string, url string, header map[string]string, body io.Reader) (int, []byte, error) {

	// Create request.
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return 0, nil, errors.Wrap(err, "cannot build Fetch request")
	}

	// Add any required headers.
	for key, value := range header {
		req.Header.Add(key, value)
	}

	// Perform the network call.
	res, err := client.Do(req)
	if err != nil {
		return 0, nil, errors.Wrap(err, "Fetch network call failed")
	}

	// return response payload as bytes
	respByte, err := ioutil.ReadAll(res.Body)
	if err != nil {
		res.Body.Close()
		return res.StatusCode, nil, errors.Wrap(err, "cannot read Fetch response")
	}
	res.Body.Close()

	return res.StatusCode, respByte, nil
}

//
// small utility function embedded in major ops
// to print a performance indicator.
//
func TimeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	log.Printf("%s took %s", name, elapsed.Truncate(time.Millisecond).String())

}

//
// find an available tcp port
//
func AvailablePort() (int, error) {

	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, errors.Wrap(err, "cannot acquire a tcp port")
	}
	defer listener.Close()

	return listener.Addr().(*net.TCPAddr).Port, nil

}
