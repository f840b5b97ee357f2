// Package tjson implements a streaming JSON reader and writer for
// byte-oriented I/O under tight memory budgets.
//
// Neither engine buffers a document or allocates while running. The reader
// pulls one byte at a time from an io.ByteReader and keeps at most one unit
// of lookahead. The writer pushes bytes to an io.Writer and inserts the
// punctuation required by its current state.
//
// # Reading
//
// The caller drives the parse. It peeks at the next token type, enters
// containers, steps through keys and items, and reads leaves into buffers it
// owns:
//
//	r := tjson.NewReader(bufio.NewReader(f), tjson.WithMaxDepth(64))
//	typ, res := r.Peek()
//	switch typ {
//	case tjson.TypeObject:
//		r.EnterObject()
//		for {
//			n, closed, done, res := r.NextObjectKey(key[:])
//			...
//		}
//	case tjson.TypeString:
//		n, done, res := r.ReadString(buf[:])
//		...
//	}
//
// Strings, keys and numbers longer than the caller buffer are returned in
// pieces: the call reports done=false with the buffer full, and the next call
// of the same operation continues the token.
//
// A \u escape that decodes to a non-ASCII codepoint stops the string read with
// ReadUnicode. The caller drains the codepoint with Reader.ReadUnicode,
// encodes it with CodepointToUTF8 and resumes the string.
//
// # Writing
//
//	w := tjson.NewWriter(os.Stdout)
//	w.OpenObject()
//	w.Key("name")
//	w.Str("tjson")
//	w.Key("size")
//	w.Int(3)
//	w.CloseObject()
//	w.Finish()
//
// Calls that are not legal in the current state return InvalidData before
// writing anything.
//
// # Results
//
// Every operation returns a Result. Okay means proceed. InvalidData is a
// grammar violation and PrematurelyEnded means the source or sink gave out.
// ReadUnicode is a continuation signal, not an error. After InvalidData or
// PrematurelyEnded the engine is not reusable until Init is called.
//
// # Numbers
//
// The reader captures numbers as raw spans. ClassifyNumber checks a span
// against the JSON number grammar; NumberToInt and NumberToFloat convert it.
package tjson
