package testutil

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// BuildPDF returns a minimal, valid PDF 1.4 document with one page per entry
// of pages, each page showing its text in Helvetica. Entries of info are
// written to the Info dictionary, so custom keys such as HashSHA256 can be
// exercised without fixture files.
func BuildPDF(pages []string, info map[string]string) []byte {
	var buf bytes.Buffer
	offsets := []int{0}

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets)-1, body)
	}

	buf.WriteString("%PDF-1.4\n%\xE2\xE3\xCF\xD3\n")

	const pagesObj, fontObj, firstPageObj = 2, 3, 4
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", firstPageObj+2*i)
	}

	obj(fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesObj))
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range pages {
		contentObj := firstPageObj + 2*i + 1
		obj(fmt.Sprintf(
			"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
			pagesObj, fontObj, contentObj))
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", escapePDFString(text))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var dict strings.Builder
	dict.WriteString("<< /Producer (legajos-testutil)")
	for _, k := range keys {
		fmt.Fprintf(&dict, " /%s (%s)", k, escapePDFString(info[k]))
	}
	dict.WriteString(" >>")
	obj(dict.String())
	infoObj := len(offsets) - 1

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets), infoObj, xref)

	return buf.Bytes()
}

// PageTexts returns n page texts produced by fn, a convenience for building
// long documents.
func PageTexts(n int, fn func(i int) string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fn(i)
	}
	return out
}

func escapePDFString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`, "\r", " ", "\n", " ")
	return r.Replace(s)
}
