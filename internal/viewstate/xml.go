package viewstate

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"
)

const indentUnit = "   "

// xmlUnsafe are the characters that cause a string payload to be wrapped in CDATA.
const xmlUnsafe = "<>&"

type xmlWriter struct {
	sb    strings.Builder
	level int
}

func (w *xmlWriter) line(format string, args ...any) {
	w.sb.WriteString(strings.Repeat(indentUnit, w.level))
	fmt.Fprintf(&w.sb, format, args...)
	w.sb.WriteByte('\n')
}

// nested writes open, the output of body one level deeper, then end.
func (w *xmlWriter) nested(open, end string, body func()) {
	w.line("%s", open)
	w.level++
	body()
	w.level--
	w.line("%s", end)
}

func (w *xmlWriter) node(n Node) {
	n.writeXML(w)
}

// xmlAllowed reports whether r may appear in an XML 1.0 document.
func xmlAllowed(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r < 0x20, r == 0xFFFE, r == 0xFFFF:
		return false
	}
	return true
}

// sanitize replaces invalid UTF-8 and characters XML cannot hold with \xNN
// escapes of their bytes.
func sanitize(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || !xmlAllowed(r) {
			for _, b := range []byte(s[i : i+size]) {
				fmt.Fprintf(&sb, "\\x%02x", b)
			}
		} else {
			sb.WriteString(s[i : i+size])
		}
		i += size
	}
	return sb.String()
}

// escapeText makes s safe to embed in the XML output. Control characters and
// invalid UTF-8 are escaped, and the result is wrapped in a CDATA section if it
// contains markup characters. Any "]]>" inside s is split across two sections
// so it cannot end the wrapper early.
func escapeText(s string) string {
	s = sanitize(s)
	if !strings.ContainsAny(s, xmlUnsafe) {
		return s
	}
	return "<![CDATA[" + strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>") + "]]>"
}

func hexValue(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

/*
XML renders the decoded ViewState as an indented XML document, for example:

	<?xml version="1.0" ?>
	<viewstate>
	   <encrypted>false</encrypted>
	   <pair>
	      <pair>
	         <string>-1620834826</string>
	         <emptynode></emptynode>
	      </pair>
	      <emptynode></emptynode>
	   </pair>
	   <hmac>false</hmac>
	</viewstate>
*/
func (r *Result) XML() string {
	w := &xmlWriter{}
	w.sb.WriteString("<?xml version=\"1.0\" ?>\n")
	w.nested("<viewstate>", "</viewstate>", func() {
		w.line("<encrypted>false</encrypted>")
		w.node(r.Root)
		if !r.HasMAC() {
			w.line("<hmac>false</hmac>")
			return
		}
		w.line("<hmac>true</hmac>")
		w.line("<hmactype>%s</hmactype>", r.MACAlgorithm())
		w.line("<hmaclength>%d</hmaclength>", r.MACLength())
		w.line("<hmacvalue>%s</hmacvalue>", hexValue(r.MAC))
	})
	return w.sb.String()
}

func (n UnsignedInt) writeXML(w *xmlWriter) {
	w.line("<uint32>%d</uint32>", n.Value)
}

func (n LengthPrefixedString) writeXML(w *xmlWriter) {
	w.line("<string>%s</string>", escapeText(n.Value))
}

func (n NullTerminatedString) writeXML(w *xmlWriter) {
	w.line("<stringnullterminated>%s</stringnullterminated>", escapeText(n.Value))
}

func (n Pair) writeXML(w *xmlWriter) {
	w.nested("<pair>", "</pair>", func() {
		w.node(n.First)
		w.node(n.Second)
	})
}

func (n Triple) writeXML(w *xmlWriter) {
	w.nested("<triple>", "</triple>", func() {
		w.node(n.First)
		w.node(n.Second)
		w.node(n.Third)
	})
}

func (n StringArray) writeXML(w *xmlWriter) {
	w.nested(fmt.Sprintf("<stringarray size=\"%d\">", len(n.Values)), "</stringarray>", func() {
		for _, v := range n.Values {
			w.line("<stringwithlength length=\"%d\">%s</stringwithlength>", len(v), escapeText(v))
		}
	})
}

func (n ObjectContainer) writeXML(w *xmlWriter) {
	w.nested(fmt.Sprintf("<objectarray size=\"%d\">", len(n.Items)), "</objectarray>", func() {
		for _, item := range n.Items {
			w.node(item)
		}
	})
}

func (n BooleanContainer) writeXML(w *xmlWriter) {
	w.nested(fmt.Sprintf("<booleanarray size=\"%d\">", len(n.Items)), "</booleanarray>", func() {
		for _, item := range n.Items {
			w.node(item)
		}
	})
}

func (n RGBAColor) writeXML(w *xmlWriter) {
	w.line("<rgba>%s</rgba>", hexValue(n.Raw))
}

func (n Unit) writeXML(w *xmlWriter) {
	w.line("<unit>%s</unit>", hexValue(n.Raw))
}

func (n StringReference) writeXML(w *xmlWriter) {
	w.line("<stringreference>%d</stringreference>", n.Index)
}

func (n ControlState) writeXML(w *xmlWriter) {
	w.nested(fmt.Sprintf("<controlstate size=\"%d\">", n.Size), "</controlstate>", func() {
		w.node(n.First)
		w.node(n.Second)
	})
}

func (n UUID) writeXML(w *xmlWriter) {
	w.line("<uuid>%s</uuid>", hexValue(n.Raw))
}

func (EmptyNode) writeXML(w *xmlWriter)   { w.line("<emptynode></emptynode>") }
func (EmptyString) writeXML(w *xmlWriter) { w.line("<emptystring></emptystring>") }
func (Zero) writeXML(w *xmlWriter)        { w.line("<zero></zero>") }
func (True) writeXML(w *xmlWriter)        { w.line("<boolean>true</boolean>") }
func (False) writeXML(w *xmlWriter)       { w.line("<boolean>false</boolean>") }
