package ocr

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("Ollama", func() {
	var (
		server    *ghttp.Server
		engine    *Ollama
		imagePath string
		captured  ollamaChatRequest
		text      string
		err       error
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		imagePath = writeImage("receipt.png", pngBytes())

		var newErr error
		engine, newErr = NewOllama(server.URL()+"/", "llava")
		Expect(newErr).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	JustBeforeEach(func() {
		text, err = engine.Recognize(context.Background(), imagePath)
	})

	When("the model answers", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/api/chat"),
				ghttp.VerifyContentType("application/json"),
				func(w http.ResponseWriter, r *http.Request) {
					body, readErr := io.ReadAll(r.Body)
					Expect(readErr).NotTo(HaveOccurred())
					Expect(json.Unmarshal(body, &captured)).To(Succeed())
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Message: ollamaMessage{Role: "assistant", Content: "```\nCORNER STORE\nTotal: $12.50\n```"},
					Done:    true,
				}),
			))
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return the cleaned transcription", func() {
			Expect(text).To(Equal("CORNER STORE\nTotal: $12.50"))
		})

		It("should request the configured model without streaming", func() {
			Expect(captured.Model).To(Equal("llava"))
			Expect(captured.Stream).To(BeFalse())
		})

		It("should attach the image to the user message", func() {
			Expect(captured.Messages).To(HaveLen(2))
			Expect(captured.Messages[1].Role).To(Equal("user"))
			Expect(captured.Messages[1].Images).To(HaveLen(1))
		})
	})

	When("the API returns an error status", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("status 500"))
			Expect(err.Error()).To(ContainSubstring("model not loaded"))
		})
	})

	When("the image is not decodable", func() {
		BeforeEach(func() {
			imagePath = writeImage("receipt.jpg", []byte("not an image"))
		})

		It("returns the error without calling the API", func() {
			Expect(err).To(HaveOccurred())
			Expect(server.ReceivedRequests()).To(BeEmpty())
		})
	})

	Describe("NewOllama", func() {
		It("should apply defaults", func() {
			o, newErr := NewOllama("", "")
			Expect(newErr).NotTo(HaveOccurred())
			Expect(o.baseURL).To(Equal("http://localhost:11434"))
			Expect(o.model).To(Equal("llava"))
		})
	})
})
