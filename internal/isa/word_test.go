package isa

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Word", func() {
	Context("register fields", func() {
		It("should recover every register index in every field", func() {
			for r := Register(0); r < RegisterCount; r++ {
				w := Registers(OpAdd3, r, RegisterCount-1-r, r)
				Expect(w.Opcode()).To(Equal(OpAdd3))
				Expect(w.RA()).To(Equal(r))
				Expect(w.RB()).To(Equal(RegisterCount - 1 - r))
				Expect(w.RC()).To(Equal(r))
			}
		})

		It("should leave the lowest bit clear", func() {
			w := Registers(OpTst, 7, 7, 7)
			Expect(w & 1).To(BeZero())
		})

		It("should encode mov reg0 reg1", func() {
			Expect(Registers(OpMov, 0, 1, 0)).To(Equal(Word(0x0810)))
		})
	})

	Context("address field", func() {
		DescribeTable("absolute targets",
			func(target uint16) {
				w := Address(OpJmp, target)
				Expect(w.Opcode()).To(Equal(OpJmp))
				Expect(w.Address()).To(Equal(target))
			},
			Entry("lowest", uint16(0)),
			Entry("middle", uint16(512)),
			Entry("highest", uint16(MaxAddress)),
		)

		DescribeTable("relative offsets",
			func(offset int) {
				w := Offset(OpJr, offset)
				Expect(w.Opcode()).To(Equal(OpJr))
				Expect(w.Offset()).To(Equal(offset))
			},
			Entry("lowest", MinOffset),
			Entry("minus one", -1),
			Entry("zero", 0),
			Entry("plus one", 1),
			Entry("highest", MaxOffset),
		)
	})

	Context("decoding", func() {
		It("should recover a 16-bit constant over the full range", func() {
			for _, value := range []uint16{0, 1, 0x7fff, 0x8000, 0xfffe, 0xffff} {
				words := []Word{Registers(OpLdcon, 7, 0, 0), Word(value)}
				decoded, err := Decode(words)
				Expect(err).NotTo(HaveOccurred())
				Expect(decoded).To(HaveLen(1))
				Expect(decoded[0].RA).To(Equal(Register(7)))
				Expect(decoded[0].Operand).To(Equal(value))
			}
		})

		It("should assign word addresses", func() {
			words := []Word{
				Registers(OpLdcon, 0, 0, 0), 100,
				Address(OpJmp, 0),
			}
			decoded, err := Decode(words)
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded).To(HaveLen(2))
			Expect(decoded[1].Address).To(Equal(uint16(2)))
			Expect(decoded[1].Target).To(Equal(uint16(0)))
			Expect(decoded[1].String()).To(Equal("jmp 0"))
		})

		It("should reject a truncated two word instruction", func() {
			_, err := Decode([]Word{Registers(OpLdcon, 1, 0, 0)})
			Expect(err).To(MatchError(errTruncatedStream))
		})

		It("should reject unknown opcodes", func() {
			_, err := Decode([]Word{0xfc00})
			Expect(err).To(MatchError(errInvalidOpcode))
		})
	})
})
