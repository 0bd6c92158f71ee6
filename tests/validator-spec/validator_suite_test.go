package validatorspec

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestValidatorSpec(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Validator Spec Suite")
}
