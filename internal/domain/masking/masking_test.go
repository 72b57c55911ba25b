package masking_test

import (
	"strings"
	"testing"

	"github.com/okian/compliance/internal/domain/masking"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMask(t *testing.T) {
	Convey("Given the default masking policy", t, func() {
		Convey("When the detail has a 40 character token", func() {
			token := "abcd" + strings.Repeat("X", 36)
			out := masking.Mask("Token leaked: " + token)

			Convey("Then only the first four characters survive", func() {
				So(out, ShouldEqual, "Token leaked: abcd"+strings.Repeat("*", 36))
			})
		})

		Convey("When a long token is a URL", func() {
			url := "https://example.com/very/long/path/that/exceeds/thirty/chars"
			out := masking.Mask("see " + url)

			Convey("Then it is left alone", func() {
				So(out, ShouldEqual, "see "+url)
			})
		})

		Convey("When a token is exactly 30 characters", func() {
			token := strings.Repeat("a", 30)

			Convey("Then it is not masked", func() {
				So(masking.Mask(token), ShouldEqual, token)
			})
		})

		Convey("When a token is 31 characters", func() {
			token := strings.Repeat("a", 31)

			Convey("Then it is masked", func() {
				So(masking.Mask(token), ShouldEqual, "aaaa"+strings.Repeat("*", 27))
			})
		})

		Convey("When the input is empty", func() {
			Convey("Then the output is empty", func() {
				So(masking.Mask(""), ShouldEqual, "")
			})
		})

		Convey("When the input has irregular whitespace", func() {
			Convey("Then tokens are rejoined with single spaces", func() {
				So(masking.Mask("  expected\t200\n\ngot   500 "), ShouldEqual, "expected 200 got 500")
			})
		})

		Convey("When the token contains multi-byte characters", func() {
			token := "çãéí" + strings.Repeat("ú", 27)

			Convey("Then length and masking are counted in characters", func() {
				So(masking.Mask(token), ShouldEqual, "çãéí"+strings.Repeat("*", 27))
			})
		})
	})
}

func TestPolicyApply(t *testing.T) {
	Convey("Given a custom policy", t, func() {
		p := masking.Policy{MinLength: 5, Visible: 2, ExemptPrefix: "ok"}

		Convey("When several tokens qualify", func() {
			out, n := p.Apply("secret1 okayokay short tokenABC")

			Convey("Then each qualifying token is masked and counted", func() {
				So(out, ShouldEqual, "se***** okayokay short to******")
				So(n, ShouldEqual, 2)
			})
		})

		Convey("When masking twice", func() {
			once := p.Mask("abcdefghij")

			Convey("Then the second pass keeps the result stable in length", func() {
				So(len(p.Mask(once)), ShouldEqual, len(once))
			})
		})
	})

	Convey("Given a policy without an exempt prefix", t, func() {
		p := masking.Policy{MinLength: 3, Visible: 0}

		Convey("Then every long token is fully masked", func() {
			So(p.Mask("abcd xy"), ShouldEqual, "**** xy")
		})
	})
}
