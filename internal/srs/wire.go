package srs

import (
	"bytes"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/go-snarkpack/aggregator/internal/errs"
)

// MarshalBinary serializes the full power tables so a setup run can be
// persisted and reused across aggregate/verify invocations without rerunning
// Setup.
func (s *SRS) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	writeUint32(&buf, s.NMax)
	writeG1(&buf, &s.G1Gen)
	writeG2(&buf, &s.G2Gen)
	writeG1(&buf, &s.AlphaG1)
	writeG1(&buf, &s.BetaG1)
	writeG2(&buf, &s.AlphaG2)
	writeG2(&buf, &s.BetaG2)

	writeUint32(&buf, uint32(len(s.G1AlphaPowers)))
	for i := range s.G1AlphaPowers {
		writeG1(&buf, &s.G1AlphaPowers[i])
		writeG1(&buf, &s.G1BetaPowers[i])
	}
	writeUint32(&buf, uint32(len(s.G2AlphaPowers)))
	for i := range s.G2AlphaPowers {
		writeG2(&buf, &s.G2AlphaPowers[i])
		writeG2(&buf, &s.G2BetaPowers[i])
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary is the inverse of MarshalBinary.
func (s *SRS) UnmarshalBinary(data []byte) error {
	r := &byteReader{data: data}
	nMax, err := r.readUint32()
	if err != nil {
		return err
	}
	s.NMax = nMax
	if err := readG1(r, &s.G1Gen); err != nil {
		return err
	}
	if err := readG2(r, &s.G2Gen); err != nil {
		return err
	}
	if err := readG1(r, &s.AlphaG1); err != nil {
		return err
	}
	if err := readG1(r, &s.BetaG1); err != nil {
		return err
	}
	if err := readG2(r, &s.AlphaG2); err != nil {
		return err
	}
	if err := readG2(r, &s.BetaG2); err != nil {
		return err
	}

	g1Len, err := r.readUint32()
	if err != nil {
		return err
	}
	s.G1AlphaPowers = make([]bn254.G1Affine, g1Len)
	s.G1BetaPowers = make([]bn254.G1Affine, g1Len)
	for i := uint32(0); i < g1Len; i++ {
		if err := readG1(r, &s.G1AlphaPowers[i]); err != nil {
			return err
		}
		if err := readG1(r, &s.G1BetaPowers[i]); err != nil {
			return err
		}
	}

	g2Len, err := r.readUint32()
	if err != nil {
		return err
	}
	s.G2AlphaPowers = make([]bn254.G2Affine, g2Len)
	s.G2BetaPowers = make([]bn254.G2Affine, g2Len)
	for i := uint32(0); i < g2Len; i++ {
		if err := readG2(r, &s.G2AlphaPowers[i]); err != nil {
			return err
		}
		if err := readG2(r, &s.G2BetaPowers[i]); err != nil {
			return err
		}
	}

	if !r.atEnd() {
		return errs.New(errs.KindMalformedProof, errs.ErrTruncatedData, "trailing bytes after SRS")
	}
	return nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	buf.Write(b[:])
}

func writeG1(buf *bytes.Buffer, p *bn254.G1Affine) { buf.Write(p.Marshal()) }
func writeG2(buf *bytes.Buffer, p *bn254.G2Affine) { buf.Write(p.Marshal()) }

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) atEnd() bool { return r.pos == len(r.data) }

func (r *byteReader) readUint32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, errs.New(errs.KindMalformedProof, errs.ErrTruncatedData, "readUint32")
	}
	b := r.data[r.pos : r.pos+4]
	r.pos += 4
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

func (r *byteReader) readN(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("srs: unexpected end of data")
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func readG1(r *byteReader, p *bn254.G1Affine) error {
	b, err := r.readN(bn254.SizeOfG1AffineUncompressed)
	if err != nil {
		return err
	}
	if err := p.Unmarshal(b); err != nil {
		return errs.New(errs.KindMalformedProof, errs.ErrTruncatedData, err.Error())
	}
	return nil
}

func readG2(r *byteReader, p *bn254.G2Affine) error {
	b, err := r.readN(bn254.SizeOfG2AffineUncompressed)
	if err != nil {
		return err
	}
	if err := p.Unmarshal(b); err != nil {
		return errs.New(errs.KindMalformedProof, errs.ErrTruncatedData, err.Error())
	}
	return nil
}
