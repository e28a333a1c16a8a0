package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	. "github.com/onsi/gomega"
)

func httpGet(url string) *http.Response {
	resp, err := http.Get(url)
	Expect(err).NotTo(HaveOccurred())
	return resp
}

func httpGetWithRange(url, rangeHeader string) *http.Response {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	Expect(err).NotTo(HaveOccurred())
	req.Header.Set("Range", rangeHeader)
	resp, err := http.DefaultClient.Do(req)
	Expect(err).NotTo(HaveOccurred())
	return resp
}

func httpDelete(url string) *http.Response {
	req, err := http.NewRequest(http.MethodDelete, url, nil)
	Expect(err).NotTo(HaveOccurred())
	resp, err := http.DefaultClient.Do(req)
	Expect(err).NotTo(HaveOccurred())
	return resp
}

// uploadRecording posts a multipart form with the given file content and
// extra form fields to the upload endpoint.
func uploadRecording(fields map[string]string, filename string, content []byte) *http.Response {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		Expect(w.WriteField(k, v)).To(Succeed())
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write(content)
		Expect(err).NotTo(HaveOccurred())
	}
	Expect(w.Close()).To(Succeed())

	resp, err := http.Post(baseURL+"/api/recordings", w.FormDataContentType(), &buf)
	Expect(err).NotTo(HaveOccurred())
	return resp
}

// decodeJSON decodes the response body into target and closes the body.
func decodeJSON(resp *http.Response, target interface{}) {
	defer resp.Body.Close()
	Expect(json.NewDecoder(resp.Body).Decode(target)).To(Succeed())
}

// readBody drains the response body and closes it.
func readBody(resp *http.Response) []byte {
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return b
}
