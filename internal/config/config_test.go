/*
 * MIT License
 *
 * Copyright (c) 2026 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package config_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/a18361351/webserver/internal/config"
)

var _ = Describe("Config", func() {
	It("matches the original server's documented defaults", func() {
		c := config.Default()
		Expect(c.SubReactors).To(Equal(1))
		Expect(c.WorkerThreads).To(Equal(1))
		Expect(c.UseSendfile).To(BeFalse())
		Expect(c.ListenPort).To(Equal(1234))
		Expect(c.ListenIntf).To(Equal("0.0.0.0"))
	})

	It("validates the default config", func() {
		Expect(config.Default().Validate()).To(Succeed())
	})

	It("rejects a zero worker count", func() {
		c := config.Default()
		c.WorkerThreads = 0
		Expect(c.Validate()).To(HaveOccurred())
	})

	It("rejects an out-of-range port", func() {
		c := config.Default()
		c.ListenPort = 70000
		Expect(c.Validate()).To(HaveOccurred())
	})

	It("rejects an empty document root", func() {
		c := config.Default()
		c.DocRoot = ""
		Expect(c.Validate()).To(HaveOccurred())
	})
})
