package e2e

import (
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingInfo struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename"`
	Filesize int64  `json:"filesize"`
	Duration int64  `json:"duration"`
}

var _ = Describe("Recording Service", func() {

	Describe("Health endpoints", func() {
		It("reports liveness", func() {
			resp := httpGet(baseURL + "/health")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body map[string]string
			decodeJSON(resp, &body)
			Expect(body["status"]).To(Equal("ok"))
		})

		It("reports readiness with a healthy database", func() {
			resp := httpGet(baseURL + "/readyz")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body map[string]interface{}
			decodeJSON(resp, &body)
			Expect(body["status"]).To(Equal("ready"))
		})
	})

	Describe("Recording lifecycle", func() {
		It("uploads, lists, streams, downloads, and deletes a recording", func() {
			content := []byte("0123456789abcdefghijklmnopqrstuvwxyz")

			// 1. Upload
			resp := uploadRecording(map[string]string{"duration": "30"}, "e2e.webm", content)
			Expect(resp.StatusCode).To(Equal(http.StatusCreated))

			var created struct {
				Message   string        `json:"message"`
				Recording recordingInfo `json:"recording"`
			}
			decodeJSON(resp, &created)
			Expect(created.Message).To(Equal("Recording uploaded successfully"))
			Expect(created.Recording.ID).To(BeNumerically(">", 0))
			Expect(created.Recording.Filesize).To(Equal(int64(len(content))))
			Expect(created.Recording.Duration).To(Equal(int64(30)))

			recURL := fmt.Sprintf("%s/api/recordings/%d", baseURL, created.Recording.ID)
			DeferCleanup(func() {
				// Best-effort cleanup in case a later step fails
				resp := httpDelete(recURL)
				resp.Body.Close()
			})

			// 2. List contains the upload
			resp = httpGet(baseURL + "/api/recordings")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var listed []recordingInfo
			decodeJSON(resp, &listed)
			ids := []int64{}
			for _, r := range listed {
				ids = append(ids, r.ID)
			}
			Expect(ids).To(ContainElement(created.Recording.ID))

			// 3. Stream a byte range
			resp = httpGetWithRange(recURL, "bytes=10-15")
			Expect(resp.StatusCode).To(Equal(http.StatusPartialContent))
			Expect(resp.Header.Get("Content-Range")).To(Equal(fmt.Sprintf("bytes 10-15/%d", len(content))))
			Expect(resp.Header.Get("Content-Type")).To(Equal("video/webm"))
			Expect(string(readBody(resp))).To(Equal("abcdef"))

			// 4. Download the full file
			resp = httpGet(recURL + "/download")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Disposition")).To(HavePrefix("attachment"))
			Expect(readBody(resp)).To(Equal(content))

			// 5. Delete
			resp = httpDelete(recURL)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			resp.Body.Close()

			// 6. Verify it is gone
			resp = httpGet(recURL)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			resp.Body.Close()
		})

		It("rejects uploads without a file", func() {
			resp := uploadRecording(map[string]string{"duration": "10"}, "", nil)
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 for unknown recordings", func() {
			resp := httpGet(baseURL + "/api/recordings/999999")
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})
})
