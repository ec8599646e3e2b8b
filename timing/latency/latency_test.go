package latency_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipssim/timing/latency"
)

func TestLatency(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Latency Suite")
}

var _ = Describe("Config", func() {
	It("provides a default configuration that validates", func() {
		cfg := latency.DefaultConfig()
		Expect(cfg.Validate()).NotTo(HaveOccurred())
	})

	It("rejects a non-power-of-two block size", func() {
		cfg := latency.DefaultConfig()
		cfg.BlockSize = 48
		Expect(cfg.Validate()).To(HaveOccurred())
	})

	It("rejects zero cores", func() {
		cfg := latency.DefaultConfig()
		cfg.NumCores = 0
		Expect(cfg.Validate()).To(HaveOccurred())
	})

	It("rejects an unknown replacement policy", func() {
		cfg := latency.DefaultConfig()
		cfg.ReplPolicy = "WEIRD"
		Expect(cfg.Validate()).To(HaveOccurred())
	})

	It("clones into an independent copy", func() {
		cfg := latency.DefaultConfig()
		clone := cfg.Clone()
		clone.NumCores = 1
		Expect(cfg.NumCores).To(Equal(4))
		Expect(clone.NumCores).To(Equal(1))
	})

	It("round-trips through SaveConfig/LoadConfig", func() {
		cfg := latency.DefaultConfig()
		cfg.NumCores = 2
		cfg.L2Sets = 128

		path := filepath.Join(os.TempDir(), "mipssim-latency-test-config.json")
		defer os.Remove(path)

		Expect(cfg.SaveConfig(path)).NotTo(HaveOccurred())

		loaded, err := latency.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.NumCores).To(Equal(2))
		Expect(loaded.L2Sets).To(Equal(128))
	})

	It("fills unset fields from defaults when loading a partial file", func() {
		path := filepath.Join(os.TempDir(), "mipssim-latency-test-partial.json")
		defer os.Remove(path)
		Expect(os.WriteFile(path, []byte(`{"num_cores": 8}`), 0644)).NotTo(HaveOccurred())

		loaded, err := latency.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.NumCores).To(Equal(8))
		Expect(loaded.BlockSize).To(Equal(32))
	})
})
