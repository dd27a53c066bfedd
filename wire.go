package aggregator

import (
	"bytes"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/go-snarkpack/aggregator/internal/errs"
	"github.com/go-snarkpack/aggregator/internal/gipa"
)

// WireVersion is the version byte prefixed to every serialized
// AggregateProof.
const WireVersion byte = 1

// gtByteLen is computed once from an actual Marshal call rather than
// hard-coded, so a future gnark-crypto GT encoding change cannot silently
// desynchronize the reader from the writer.
var gtByteLen = func() int {
	var one bn254.GT
	one.SetOne()
	return len(one.Marshal())
}()

// MarshalBinary encodes the proof as a version byte followed
// by the canonical compressed encoding of every curve point (GT elements,
// which have no compressed form, use Marshal), in struct-declaration order,
// using the curve package's own Bytes/Unmarshal primitives (never a bespoke
// encoder for curve points).
func (p *AggregateProof) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(WireVersion)

	writeGT(&buf, &p.ComAB.Left)
	writeGT(&buf, &p.ComAB.Right)
	writeGT(&buf, &p.ComC.Left)
	writeGT(&buf, &p.ComC.Right)
	writeGT(&buf, &p.IPAB)
	writeG1(&buf, &p.AggC)

	gp := p.TMIPP.Gipa
	writeUint32(&buf, gp.NProofs)
	writeUint32(&buf, uint32(len(gp.Rounds)))
	for i := range gp.Rounds {
		rd := &gp.Rounds[i]
		writeGT(&buf, &rd.TabL.Left)
		writeGT(&buf, &rd.TabL.Right)
		writeGT(&buf, &rd.TabR.Left)
		writeGT(&buf, &rd.TabR.Right)
		writeGT(&buf, &rd.TucL.Left)
		writeGT(&buf, &rd.TucL.Right)
		writeGT(&buf, &rd.TucR.Left)
		writeGT(&buf, &rd.TucR.Right)
		writeGT(&buf, &rd.ZabL)
		writeGT(&buf, &rd.ZabR)
		writeG1(&buf, &rd.ZcL)
		writeG1(&buf, &rd.ZcR)
	}
	writeG1(&buf, &gp.FinalA)
	writeG2(&buf, &gp.FinalB)
	writeG1(&buf, &gp.FinalC)
	writeG2(&buf, &gp.FinalVKey[0])
	writeG2(&buf, &gp.FinalVKey[1])
	writeG1(&buf, &gp.FinalWKey[0])
	writeG1(&buf, &gp.FinalWKey[1])

	writeG2(&buf, &p.TMIPP.VKeyOpening.A)
	writeG2(&buf, &p.TMIPP.VKeyOpening.B)
	writeG1(&buf, &p.TMIPP.WKeyOpening.A)
	writeG1(&buf, &p.TMIPP.WKeyOpening.B)

	return buf.Bytes(), nil
}

// UnmarshalBinary is the inverse of MarshalBinary.
func (p *AggregateProof) UnmarshalBinary(data []byte) error {
	r := &byteReader{data: data}
	version, err := r.readByte()
	if err != nil {
		return err
	}
	if version != WireVersion {
		return errs.New(errs.KindMalformedProof, errs.ErrBadVersion, fmt.Sprintf("got version %d", version))
	}

	if err := readGT(r, &p.ComAB.Left); err != nil {
		return err
	}
	if err := readGT(r, &p.ComAB.Right); err != nil {
		return err
	}
	if err := readGT(r, &p.ComC.Left); err != nil {
		return err
	}
	if err := readGT(r, &p.ComC.Right); err != nil {
		return err
	}
	if err := readGT(r, &p.IPAB); err != nil {
		return err
	}
	if err := readG1(r, &p.AggC); err != nil {
		return err
	}

	gp := new(gipa.Proof)
	nProofs, err := r.readUint32()
	if err != nil {
		return err
	}
	numRounds, err := r.readUint32()
	if err != nil {
		return err
	}
	gp.NProofs = nProofs
	gp.Rounds = make([]gipa.Round, numRounds)
	for i := range gp.Rounds {
		rd := &gp.Rounds[i]
		for _, coord := range []*bn254.GT{&rd.TabL.Left, &rd.TabL.Right, &rd.TabR.Left, &rd.TabR.Right,
			&rd.TucL.Left, &rd.TucL.Right, &rd.TucR.Left, &rd.TucR.Right, &rd.ZabL, &rd.ZabR} {
			if err := readGT(r, coord); err != nil {
				return err
			}
		}
		if err := readG1(r, &rd.ZcL); err != nil {
			return err
		}
		if err := readG1(r, &rd.ZcR); err != nil {
			return err
		}
	}
	if err := readG1(r, &gp.FinalA); err != nil {
		return err
	}
	if err := readG2(r, &gp.FinalB); err != nil {
		return err
	}
	if err := readG1(r, &gp.FinalC); err != nil {
		return err
	}
	if err := readG2(r, &gp.FinalVKey[0]); err != nil {
		return err
	}
	if err := readG2(r, &gp.FinalVKey[1]); err != nil {
		return err
	}
	if err := readG1(r, &gp.FinalWKey[0]); err != nil {
		return err
	}
	if err := readG1(r, &gp.FinalWKey[1]); err != nil {
		return err
	}

	p.TMIPP.Gipa = gp

	if err := readG2(r, &p.TMIPP.VKeyOpening.A); err != nil {
		return err
	}
	if err := readG2(r, &p.TMIPP.VKeyOpening.B); err != nil {
		return err
	}
	if err := readG1(r, &p.TMIPP.WKeyOpening.A); err != nil {
		return err
	}
	if err := readG1(r, &p.TMIPP.WKeyOpening.B); err != nil {
		return err
	}

	if !r.atEnd() {
		return errs.New(errs.KindMalformedProof, errs.ErrTruncatedData, "trailing bytes after AggregateProof")
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

func writeG1(buf *bytes.Buffer, p *bn254.G1Affine) { b := p.Bytes(); buf.Write(b[:]) }
func writeG2(buf *bytes.Buffer, p *bn254.G2Affine) { b := p.Bytes(); buf.Write(b[:]) }
func writeGT(buf *bytes.Buffer, p *bn254.GT)       { buf.Write(p.Marshal()) }

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) atEnd() bool { return r.pos == len(r.data) }

func (r *byteReader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errs.New(errs.KindMalformedProof, errs.ErrTruncatedData, "readByte")
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

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
		return nil, errs.New(errs.KindMalformedProof, errs.ErrTruncatedData, "readN")
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func readG1(r *byteReader, p *bn254.G1Affine) error {
	b, err := r.readN(bn254.SizeOfG1AffineCompressed)
	if err != nil {
		return err
	}
	if err := p.Unmarshal(b); err != nil {
		return errs.New(errs.KindMalformedProof, errs.ErrTruncatedData, err.Error())
	}
	return nil
}

func readG2(r *byteReader, p *bn254.G2Affine) error {
	b, err := r.readN(bn254.SizeOfG2AffineCompressed)
	if err != nil {
		return err
	}
	if err := p.Unmarshal(b); err != nil {
		return errs.New(errs.KindMalformedProof, errs.ErrTruncatedData, err.Error())
	}
	return nil
}

func readGT(r *byteReader, p *bn254.GT) error {
	b, err := r.readN(gtByteLen)
	if err != nil {
		return err
	}
	if err := p.Unmarshal(b); err != nil {
		return errs.New(errs.KindMalformedProof, errs.ErrTruncatedData, err.Error())
	}
	return nil
}
