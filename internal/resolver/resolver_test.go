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

package resolver_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/a18361351/webserver/internal/resolver"
	"github.com/a18361351/webserver/internal/werrors"
)

var _ = Describe("Resolver", func() {
	var (
		root string
		res  *resolver.Resolver
	)

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(root, "index.html"), []byte("hi world\n"), 0o644)).To(Succeed())
		Expect(os.Mkdir(filepath.Join(root, "sub"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(root, "sub", "page.html"), []byte("nested"), 0o644)).To(Succeed())
		Expect(os.Mkdir(filepath.Join(root, "secret"), 0o000)).To(Succeed())

		var err error
		res, err = resolver.New(root)
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.Chmod(filepath.Join(root, "secret"), 0o755)
	})

	It("serves index.html for the root path", func() {
		result, err := res.Resolve("/")
		Expect(err).ToNot(HaveOccurred())
		Expect(string(result.Mapping.Bytes())).To(Equal("hi world\n"))
		Expect(result.Mapping.Release()).To(Succeed())
	})

	It("serves a nested file", func() {
		result, err := res.Resolve("/sub/page.html")
		Expect(err).ToNot(HaveOccurred())
		Expect(string(result.Mapping.Bytes())).To(Equal("nested"))
		Expect(result.Mapping.Release()).To(Succeed())
	})

	It("rejects a literal .. traversal attempt as Forbidden", func() {
		_, err := res.Resolve("/../etc/passwd")
		Expect(werrors.StatusOf(err)).To(Equal(403))
	})

	It("reports 404 for a missing file", func() {
		_, err := res.Resolve("/does-not-exist.html")
		Expect(werrors.StatusOf(err)).To(Equal(404))
	})

	It("reports 400 when the target resolves to a directory", func() {
		_, err := res.Resolve("/sub")
		Expect(werrors.StatusOf(err)).To(Equal(400))
	})

	It("releases a mapping exactly once without error on repeated calls", func() {
		result, err := res.Resolve("/")
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Mapping.Release()).To(Succeed())
		Expect(result.Mapping.Release()).To(Succeed())
	})
})
