package ocr

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// stubRunner records the command it was asked to run and replays canned output
type stubRunner struct {
	name   string
	args   []string
	stdout []byte
	stderr []byte
	err    error
}

func (s *stubRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.name = name
	s.args = args
	return s.stdout, s.stderr, s.err
}

var _ = Describe("Tesseract", func() {
	var (
		cfg       TesseractConfig
		runner    *stubRunner
		engine    *Tesseract
		imagePath string
		ctx       context.Context
		text      string
		err       error
	)

	BeforeEach(func() {
		cfg = TesseractConfig{}
		runner = &stubRunner{stdout: []byte("CORNER STORE\nTotal: $12.50\n")}
		imagePath = writeImage("receipt.png", pngBytes())
		ctx = context.Background()
	})

	JustBeforeEach(func() {
		engine = NewTesseractWithRunner(cfg, runner)
		text, err = engine.Recognize(ctx, imagePath)
	})

	When("recognition succeeds", func() {
		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return stdout verbatim", func() {
			Expect(text).To(Equal("CORNER STORE\nTotal: $12.50\n"))
		})

		It("should run the default binary", func() {
			Expect(runner.name).To(Equal("tesseract"))
		})

		It("should pass the image, stdout and default language", func() {
			Expect(runner.args).To(Equal([]string{imagePath, "stdout", "-l", "eng"}))
		})
	})

	When("custom options are configured", func() {
		BeforeEach(func() {
			cfg = TesseractConfig{
				Command:     "/opt/tesseract/bin/tesseract",
				Language:    "eng+hin",
				PSM:         6,
				TessdataDir: "/opt/tessdata",
			}
		})

		It("should run the configured binary", func() {
			Expect(runner.name).To(Equal("/opt/tesseract/bin/tesseract"))
		})

		It("should pass all options", func() {
			Expect(runner.args).To(Equal([]string{
				imagePath, "stdout", "-l", "eng+hin", "--psm", "6", "--tessdata-dir", "/opt/tessdata",
			}))
		})
	})

	When("tesseract fails", func() {
		BeforeEach(func() {
			runner.err = errors.New("exit status 1")
			runner.stderr = []byte("Error in pixReadStream: Unknown format")
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
		})

		It("should include the stderr output", func() {
			Expect(err.Error()).To(ContainSubstring("Unknown format"))
		})
	})

	When("the context is cancelled", func() {
		BeforeEach(func() {
			cancelled, cancel := context.WithCancel(context.Background())
			cancel()
			ctx = cancelled
			runner.err = errors.New("signal: killed")
		})

		It("should report the cancellation", func() {
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})
	})

	When("the image does not exist", func() {
		BeforeEach(func() {
			imagePath = "/nonexistent/receipt.png"
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
		})

		It("should not run tesseract", func() {
			Expect(runner.name).To(BeEmpty())
		})
	})

	It("should be named tesseract", func() {
		Expect(engine.Name()).To(Equal("tesseract"))
	})
})
