package soc

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Jon-Bright/mcom03clk/mmio"
	"github.com/Jon-Bright/mcom03clk/pll"
	"github.com/platinasystems/log"
)

const (
	OTP_FLAG_FORCE_SIGN      = 1 << 16
	OTP_FLAG_FORCE_ENCRYPT   = 1 << 17
	OTP_FLAG_DISABLE_LOG     = 1 << 19
	OTP_FLAG_ENABLE_WATCHDOG = 1 << 20
)

// OTP is the layout of the one-time-programmable fuse block.
type OTP struct {
	Fuse1          uint32
	Fuse0          uint32
	Flags          uint32
	Serial         uint32
	DUK            [16]byte
	ROTPK          [32]byte
	_              uint32
	CRLs           [7]uint32
	_              uint32
	CRLProtection  [7]uint32
	Fuse1Redundant uint32
	Fuse0Redundant uint32
	_              [52]byte
	FWLockable     [68]byte
	FWNoLock       [256]byte
}

func (o *OTP) ForceSign() bool {
	return o.Flags&OTP_FLAG_FORCE_SIGN != 0
}

func (o *OTP) ForceEncrypt() bool {
	return o.Flags&OTP_FLAG_FORCE_ENCRYPT != 0
}

func (o *OTP) DisableLog() bool {
	return o.Flags&OTP_FLAG_DISABLE_LOG != 0
}

func (o *OTP) EnableWatchdog() bool {
	return o.Flags&OTP_FLAG_ENABLE_WATCHDOG != 0
}

func parseOTP(words []uint32) (*OTP, error) {
	var buf bytes.Buffer
	err := binary.Write(&buf, binary.LittleEndian, words)
	if err != nil {
		return nil, err
	}
	o := &OTP{}
	err = binary.Read(&buf, binary.LittleEndian, o)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse OTP: %v", err)
	}
	return o, nil
}

// The OTP block can only be read with the service APB clock below 25 MHz.
// The service PLL is dropped to 135 MHz, which leaves APB at 22.5 MHz
// with the service dividers unchanged.
func (b *Board) otpEnableRead() (*pll.Config, error) {
	rf := mmio.Window(b.serviceURB, SERVICE_URB_PLLCNFG)
	saved := &pll.Config{InpFreq: b.cfg.XTIHz}
	err := pll.GetFreq(rf, saved)
	if err != nil {
		return nil, err
	}
	err = pll.SetManualFreq(rf, &pll.Config{NF: 59, OD: 11}, b.cfg.Retries)
	if err != nil {
		return nil, fmt.Errorf("couldn't slow service pll for OTP: %w", err)
	}
	flag, err := b.clock.Poll(func() uint32 {
		return b.serviceURB.Read32(SERVICE_URB_OTP_FLAG)
	}, func(val uint32) bool {
		return val&OTP_FLAG_BD_DONE != 0
	}, 0, OTP_FLAG_WAIT_US)
	if err != nil {
		return nil, fmt.Errorf("OTP not ready, flag %08X: %w", flag, err)
	}
	mode := b.serviceURB.Read32(SERVICE_URB_OTP_MODE)
	mode &^= OTP_MODE_DCTRL | OTP_MODE_PD
	b.serviceURB.Write32(SERVICE_URB_OTP_MODE, mode|OTP_MODE_DCTRL)
	return saved, nil
}

func (b *Board) otpDisableRead(saved *pll.Config) error {
	mode := b.serviceURB.Read32(SERVICE_URB_OTP_MODE)
	mode &^= OTP_MODE_DCTRL | OTP_MODE_PD
	b.serviceURB.Write32(SERVICE_URB_OTP_MODE, mode|OTP_MODE_PD)
	err := pll.SetManualFreq(mmio.Window(b.serviceURB, SERVICE_URB_PLLCNFG), saved, b.cfg.Retries)
	if err != nil {
		return fmt.Errorf("couldn't restore service pll after OTP: %w", err)
	}
	return nil
}

// OTPWords returns the raw OTP contents, reading the block on the first successful call
// and returning the cached copy afterwards.
func (b *Board) OTPWords() ([]uint32, error) {
	if !b.otpRead {
		saved, err := b.otpEnableRead()
		if err != nil {
			return nil, err
		}
		for i := range b.otpWords {
			b.otpWords[i] = b.otp.Read32(uintptr(i) * 4)
		}
		b.plat.Barrier()
		err = b.otpDisableRead(saved)
		if err != nil {
			return nil, err
		}
		b.otpRead = true
		log.Printf("OTP read, restored service PLL %v", saved)
	}
	return b.otpWords[:], nil
}

// OTPDump returns the parsed OTP contents, see OTPWords.
func (b *Board) OTPDump() (*OTP, error) {
	words, err := b.OTPWords()
	if err != nil {
		return nil, err
	}
	return parseOTP(words)
}

// CleanOTP zeroes the cached OTP contents. They aren't read again.
func (b *Board) CleanOTP() {
	for i := range b.otpWords {
		b.otpWords[i] = 0
	}
}
