package lower_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestLower(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Lower Suite")
}
