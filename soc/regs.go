package soc

// Physical register map. Offsets are relative to the block base they follow.
const (
	SERVICE_URB_BASE = 0xbf000000

	SERVICE_URB_CPU_PPOLICY   = 0x00
	SERVICE_URB_SDR_PPOLICY   = 0x08
	SERVICE_URB_MEDIA_PPOLICY = 0x10
	SERVICE_URB_CORE_PPOLICY  = 0x18
	SERVICE_URB_HSP_PPOLICY   = 0x20
	SERVICE_URB_LSP0_PPOLICY  = 0x28
	SERVICE_URB_LSP1_PPOLICY  = 0x30
	SERVICE_URB_DDR_PPOLICY   = 0x38
	SERVICE_URB_TOP_PPOLICY   = 0x40
	SERVICE_URB_RISC0_PPOLICY = 0x48
	SERVICE_URB_PLLCNFG       = 0x1000
	SERVICE_URB_PLLDIAG       = 0x1004
	SERVICE_URB_TOP_CLKGATE   = 0x1008
	SERVICE_URB_OTP_MODE      = 0x3008
	SERVICE_URB_OTP_FLAG      = 0x300c
	SERVICE_URB_TP_DBGEN      = 0x3030
	SERVICE_URB_SDR_DBGEN     = 0x3034
	SERVICE_URB_SP_DBGEN      = 0x3038
	SERVICE_URB_S_DBGEN       = 0x303c
	SERVICE_URB_UST_DBGEN     = 0x3040
	SERVICE_URB_SIZE          = 0x4000

	SERVICE_UCG1_BASE = 0xbf020000
	SERVICE_OTP_BASE  = 0xbf030000
	SERVICE_WDT0_BASE = 0xbf080000

	CPU_URB_BASE         = 0xa1000000
	CPU_URB_A53SYS       = 0x40
	CPU_URB_PLLCNFG      = 0x50
	CPU_URB_RVBADDR      = 0x118
	CPU_URB_SIZE         = 0x200
	CPU_UCG_BASE         = 0xa1080000
	CPU_CORE_MAX_NUMBER  = 4
	CPU_CORE_PPOLICY_GAP = 0x10

	TOP_URB_BASE  = 0xa1800000
	TOP_URB_PLL   = 0x00
	TOP_UCG0_BASE = 0xa1801000
	TOP_UCG_GAP   = 0x1000

	LSP0_UCG2_BASE = 0xa1690000

	LSP1_UCG_BASE              = 0xa17c0000
	LSP1_URB_BASE              = 0xa17e0000
	LSP1_URB_I2S_UCG_RSTN_PPOL = 0x08

	HSP_URB_BASE      = 0xb0400000
	HSP_URB_REFCLK    = 0x0c
	HSP_URB_DBG_CTR   = 0x1a8
	HSP_URB_SIZE      = 0x200
	HSP_UCG0_BASE     = 0xb0410000
	HSP_UCG_GAP       = 0x10000
	DDR_SYS_UCG0_BASE = 0xac010000
	DDR_UCG_GAP       = 0x10000

	UCG_SIZE = 0x48
)

// Service top clock gate bits.
const (
	TOP_CLKGATE_SERVICE          = 1 << 0
	TOP_CLKGATE_MEDIA            = 1 << 1
	TOP_CLKGATE_CPU              = 1 << 2
	TOP_CLKGATE_SDR              = 1 << 3
	TOP_CLKGATE_HSP              = 1 << 4
	TOP_CLKGATE_LSP0             = 1 << 5
	TOP_CLKGATE_LSP1             = 1 << 6
	TOP_CLKGATE_DDR              = 1 << 7
	TOP_CLKGATE_TOP_INTERCONNECT = 1 << 8
	TOP_CLKGATE_ALL              = 0x1ff
)

// TOP UCG0 channels
const (
	TOP_UCG0_DDR_DP       = 0
	TOP_UCG0_DDR_VPU      = 1
	TOP_UCG0_DDR_GPU      = 2
	TOP_UCG0_DDR_ISP      = 3
	TOP_UCG0_DDR_CPU      = 4
	TOP_UCG0_CPU_ACP      = 5
	TOP_UCG0_DDR_LSP0     = 6
	TOP_UCG0_AXI_COH_COMM = 7
	TOP_UCG0_ALL          = 0xff
)

// TOP UCG1 channels. 1 and 3 don't exist.
const (
	TOP_UCG1_AXI_SLOW_COMM = 0
	TOP_UCG1_AXI_FAST_COMM = 2
	TOP_UCG1_DDR_SDR_DSP   = 4
	TOP_UCG1_DDR_SDR_PCIE  = 5
	TOP_UCG1_DDR_LSP1      = 6
	TOP_UCG1_DDR_SERVICE   = 7
	TOP_UCG1_DDR_HSP       = 8
	TOP_UCG1_ALL           = 0x1f5
)

// Service UCG1 channels
const (
	SERVICE_UCG1_APB        = 0
	SERVICE_UCG1_CORE       = 1
	SERVICE_UCG1_QSPI0      = 2
	SERVICE_UCG1_BPAM       = 3
	SERVICE_UCG1_RISC0      = 4
	SERVICE_UCG1_MFBSP0     = 5
	SERVICE_UCG1_MFBSP1     = 6
	SERVICE_UCG1_MAILBOX0   = 7
	SERVICE_UCG1_PVTCTR     = 8
	SERVICE_UCG1_I2C4       = 9
	SERVICE_UCG1_TRNG       = 10
	SERVICE_UCG1_SPIOTP     = 11
	SERVICE_UCG1_I2C4_EXT   = 12
	SERVICE_UCG1_QSPI0_EXT  = 13
	SERVICE_UCG1_CLKOUT_EXT = 14
	SERVICE_UCG1_RISC0_TCK  = 15
	SERVICE_UCG1_ALL        = 0xffff
	SERVICE_UCG1_SYNC       = 0xfff
)

// CPU UCG channels
const (
	CPU_UCG_SYS  = 0
	CPU_UCG_CORE = 1
	CPU_UCG_DBUS = 2
	CPU_UCG_ALL  = 0x7
)

// LSP0 UCG2 channels
const (
	LSP0_UCG2_SYS   = 0
	LSP0_UCG2_UART3 = 1
	LSP0_UCG2_UART1 = 2
	LSP0_UCG2_UART2 = 3
	LSP0_UCG2_SSI0  = 4
	LSP0_UCG2_I2C0  = 5
	LSP0_UCG2_GPIO0 = 6
	LSP0_UCG2_ALL   = 0x7f
)

// LSP1 UCG channels
const (
	LSP1_UCG_SYS    = 0
	LSP1_UCG_I2C0   = 1
	LSP1_UCG_I2C1   = 2
	LSP1_UCG_I2C2   = 3
	LSP1_UCG_GPIO1  = 4
	LSP1_UCG_SPI1   = 5
	LSP1_UCG_UART0  = 6
	LSP1_UCG_TIMERS = 7
	LSP1_UCG_PWM    = 8
	LSP1_UCG_WDT1   = 9
	LSP1_UCG_ALL    = 0x3ff
)

const HSP_UCG1_CLK_DBG = 4

// Debug enable fields
const (
	DBG_TP_MASK      = 0x1
	DBG_SDR_MASK     = 0x7
	DBG_SP_MASK      = 0x3
	DBG_S_MASK       = 0x7
	DBG_UST_MASK     = 0xff
	HSP_DBG_CTR_MASK = 0x7
)

// WDT0
const (
	WDT_CR       = 0x0
	WDT_TORR     = 0x4
	WDT_CRR      = 0xc
	WDT_SIZE     = 0x10
	WDT_CR_EN    = 1 << 0
	WDT_TORR_MAX = 0xff
	WDT_CRR_KICK = 0x76
)

// OTP
const (
	OTP_MODE_DCTRL   = 1 << 1
	OTP_MODE_PD      = 1 << 2
	OTP_FLAG_BD_DONE = 1 << 1
	OTP_FLAG_WAIT_US = 1000
	OTP_WORDS        = 128
	OTP_SIZE         = OTP_WORDS * 4
)

func bit(n uint32) uint32 {
	return 1 << n
}
