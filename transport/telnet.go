package transport

import "bytes"

// maxLine caps a buffered line. Longer input is emitted in pieces.
const maxLine = 8 << 10

// Telnet command bytes.
const (
	iac  = 255
	dont = 254
	do   = 253
	wont = 252
	will = 251
	sb   = 250
	ga   = 249
	se   = 240
	eor  = 239
)

type telnetState int

const (
	stData telnetState = iota
	stIAC
	stOption // WILL/WONT/DO/DONT awaiting the option byte
	stSub    // inside SB ... IAC SE
	stSubIAC
)

// lineSplitter strips telnet negotiation from a byte stream and splits what
// remains into lines. IAC GA and IAC EOR end a prompt that has no newline;
// for servers that send neither, flushPrompt ends one at a read boundary.
// No option is ever negotiated; requests are silently ignored.
type lineSplitter struct {
	state telnetState
	buf   []byte
}

// feed consumes p and calls emit for every completed line, without its
// line ending.
func (l *lineSplitter) feed(p []byte, emit func(string)) {
	for _, b := range p {
		switch l.state {
		case stData:
			switch b {
			case iac:
				l.state = stIAC
			case '\n':
				l.flush(emit)
			case '\r', 0:
			default:
				l.buf = append(l.buf, b)
				if len(l.buf) >= maxLine {
					l.flush(emit)
				}
			}
		case stIAC:
			switch b {
			case iac:
				l.buf = append(l.buf, iac)
				l.state = stData
				if len(l.buf) >= maxLine {
					l.flush(emit)
				}
			case will, wont, do, dont:
				l.state = stOption
			case sb:
				l.state = stSub
			case ga, eor:
				if len(l.buf) > 0 {
					l.flush(emit)
				}
				l.state = stData
			default:
				l.state = stData
			}
		case stOption:
			l.state = stData
		case stSub:
			if b == iac {
				l.state = stSubIAC
			}
		case stSubIAC:
			if b == se {
				l.state = stData
			} else {
				l.state = stSub
			}
		}
	}
}

func (l *lineSplitter) flush(emit func(string)) {
	emit(string(l.buf))
	l.buf = l.buf[:0]
}

// flushPrompt emits a pending partial line that looks like a status prompt:
// it mentions HP and ends in '>', ':' or ']'. Called when a read drains, so
// the prompt is not glued onto the next line the server sends.
func (l *lineSplitter) flushPrompt(emit func(string)) {
	if l.state != stData || len(l.buf) == 0 {
		return
	}
	tail := bytes.TrimRight(l.buf, " ")
	if len(tail) == 0 || !bytes.ContainsAny(tail[len(tail)-1:], ">:]") {
		return
	}
	if !bytes.Contains(bytes.ToUpper(tail), []byte("HP")) {
		return
	}
	l.flush(emit)
}
