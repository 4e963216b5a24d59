package cli

import (
	"fmt"

	"github.com/spf13/pflag"
)

// missingPolicyFlag selects what sync does when a dataset needs a download:
// fetch it immediately or raise a consent notice.
type missingPolicyFlag struct {
	Value string
}

// String implements pflag.Value.
func (f *missingPolicyFlag) String() string {
	return f.Value
}

func (f *missingPolicyFlag) Set(value string) error {
	switch value {
	case "fetch", "notice":
		f.Value = value
		return nil
	default:
		return fmt.Errorf("must be one of: fetch, notice")
	}
}

func (f *missingPolicyFlag) Type() string {
	return "policy"
}

var _ pflag.Value = &missingPolicyFlag{}
