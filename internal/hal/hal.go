// Package hal is the SDL2 host for the interpreter core. It owns everything
// the core treats as external: rasterizing the framebuffer, generating the
// buzzer tone, translating keyboard events into keypad state and pacing the
// machine against wall-clock time.
package hal

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"chip8/internal/vm"
)

const (
	WindowWidth  = 1024
	WindowHeight = 512

	framePeriod = time.Second / 60

	audioSampleRate = 48000
	beepFrequency   = 440
)

type HAL struct {
	window          *sdl.Window
	renderer        *sdl.Renderer
	texture         *sdl.Texture
	backBuffer      []uint32
	backBufferPitch int

	audioDevice sdl.AudioDeviceID
	beepWave    []byte
}

var (
	ErrReboot = errors.New("reboot")
	ErrQuit   = errors.New("quit")
)

func New() (*HAL, error) {
	if err := sdl.Init(sdl.INIT_EVERYTHING); err != nil {
		return nil, fmt.Errorf("failed to init sdl: %w", err)
	}

	window, err := sdl.CreateWindow("CHIP-8", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, WindowWidth, WindowHeight, sdl.WINDOW_SHOWN|sdl.WINDOW_UTILITY)
	if err != nil {
		return nil, fmt.Errorf("failed to create sdl window: %w", err)
	}
	slog.Debug("hal: create window")
	window.Show()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return nil, fmt.Errorf("failed to create sdl renderer: %w", err)
	}
	err = renderer.SetLogicalSize(WindowWidth, WindowHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to resize sdl renderer: %w", err)
	}
	slog.Debug("hal: create renderer")

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING, vm.ScreenWidth, vm.ScreenHeight)
	if err != nil {
		return nil, fmt.Errorf("failed to create sdl texture: %w", err)
	}
	slog.Debug("hal: create texture")

	audioDevice, err := sdl.OpenAudioDevice("", false, &sdl.AudioSpec{
		Freq:     audioSampleRate,
		Format:   sdl.AUDIO_F32,
		Channels: 1,
		Samples:  4096,
	}, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open sdl audio device: %w", err)
	}
	sdl.PauseAudioDevice(audioDevice, false)
	slog.Debug("hal: open audio device")

	return &HAL{
		window:          window,
		renderer:        renderer,
		texture:         texture,
		backBuffer:      make([]uint32, vm.ScreenWidth*vm.ScreenHeight),
		backBufferPitch: int(vm.ScreenWidth) * int(unsafe.Sizeof(uint32(0))),
		audioDevice:     audioDevice,
		beepWave:        beepWave(),
	}, nil
}

func (hal *HAL) Shutdown() {
	sdl.CloseAudioDevice(hal.audioDevice)

	if err := hal.texture.Destroy(); err != nil {
		slog.Error("failed to destroy sdl texture", "err", err)
	}

	if err := hal.renderer.Destroy(); err != nil {
		slog.Error("failed to destroy sdl renderer", "err", err)
	}

	if err := hal.window.Destroy(); err != nil {
		slog.Error("failed to destroy sdl window", "err", err)
	}

	sdl.Quit()
}

// Run drives one machine until the window closes (ErrQuit), backspace is
// pressed (ErrReboot) or the core reports a fault. Each 60Hz frame polls
// input, runs ticksPerFrame machine ticks, renders and gates the buzzer.
// The core's own contract couples one tick to one timer decrement, so
// ticksPerFrame is the knob that trades timer fidelity for execution speed.
func (hal *HAL) Run(machine *vm.VM, ticksPerFrame int) error {
	for {
		if err := hal.readInput(machine); err != nil {
			return err
		}

		var status vm.Status
		for i := 0; i < ticksPerFrame; i++ {
			var err error
			status, err = machine.Tick()
			if err != nil {
				return err
			}
		}

		if err := hal.draw(machine.Framebuffer()); err != nil {
			return err
		}

		if status.Buzzing {
			hal.beep()
		}

		hal.waitForNextFrame()
	}
}

func (hal *HAL) readInput(machine *vm.VM) error {
	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch e.GetType() {
		case sdl.QUIT:
			slog.Debug("hal: exit requested")
			return ErrQuit

		case sdl.KEYDOWN:
			ke := e.(*sdl.KeyboardEvent)
			if ke.Keysym.Scancode == sdl.SCANCODE_BACKSPACE {
				return ErrReboot
			}
			if key, ok := keyMap(ke); ok {
				if err := machine.SetKey(key, true); err != nil {
					return err
				}
			}

		case sdl.KEYUP:
			if key, ok := keyMap(e.(*sdl.KeyboardEvent)); ok {
				if err := machine.SetKey(key, false); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func keyMap(e *sdl.KeyboardEvent) (uint8, bool) {
	// Physical                Logical
	// ================        =================
	// | 1 | 2 | 3 | 4 |       | 1 | 2 | 3 | C |
	// | q | w | e | r |       | 4 | 5 | 6 | D |
	// | a | s | d | f |  <=>  | 7 | 8 | 9 | E |
	// | z | x | c | v |       | A | 0 | B | F |
	// ================        =================

	switch e.Keysym.Scancode {
	case sdl.SCANCODE_X:
		return 0x0, true
	case sdl.SCANCODE_1:
		return 0x1, true
	case sdl.SCANCODE_2:
		return 0x2, true
	case sdl.SCANCODE_3:
		return 0x3, true
	case sdl.SCANCODE_Q:
		return 0x4, true
	case sdl.SCANCODE_W:
		return 0x5, true
	case sdl.SCANCODE_E:
		return 0x6, true
	case sdl.SCANCODE_A:
		return 0x7, true
	case sdl.SCANCODE_S:
		return 0x8, true
	case sdl.SCANCODE_D:
		return 0x9, true
	case sdl.SCANCODE_Z:
		return 0xA, true
	case sdl.SCANCODE_C:
		return 0xB, true
	case sdl.SCANCODE_4:
		return 0xC, true
	case sdl.SCANCODE_R:
		return 0xD, true
	case sdl.SCANCODE_F:
		return 0xE, true
	case sdl.SCANCODE_V:
		return 0xF, true
	default:
		return 0, false
	}
}

func (hal *HAL) draw(fb vm.Framebuffer) error {
	const (
		bgColor = uint32(0x000000)
		fgColor = uint32(0xbea700)
	)

	for y := 0; y < vm.ScreenHeight; y++ {
		for x := 0; x < vm.ScreenWidth; x++ {
			i := x + y*vm.ScreenWidth
			if fb[i] {
				hal.backBuffer[i] = fgColor
			} else {
				hal.backBuffer[i] = bgColor
			}
		}
	}

	backBufferPtr := unsafe.Pointer(&hal.backBuffer[0])
	if err := hal.texture.Update(nil, backBufferPtr, hal.backBufferPitch); err != nil {
		return fmt.Errorf("failed to update sdl texture: %w", err)
	}

	if err := hal.renderer.Clear(); err != nil {
		return fmt.Errorf("failed to clear sdl renderer: %w", err)
	}

	if err := hal.renderer.Copy(hal.texture, nil, nil); err != nil {
		return fmt.Errorf("failed to copy sdl texture to renderer: %w", err)
	}

	hal.renderer.Present()
	hal.window.SetAlwaysOnTop(true)
	return nil
}

// beep queues one frame worth of tone. The queue drains while the sound
// timer keeps the buzzer active, so back-to-back frames produce a
// continuous note.
func (hal *HAL) beep() {
	if sdl.GetQueuedAudioSize(hal.audioDevice) > uint32(2*len(hal.beepWave)) {
		return
	}

	if err := sdl.QueueAudio(hal.audioDevice, hal.beepWave); err != nil {
		slog.Error("failed to queue beep audio", "err", err)
	}
}

// beepWave renders one frame (1/60s) of a 440Hz sine as AUDIO_F32 samples.
func beepWave() []byte {
	samples := audioSampleRate / 60
	wave := make([]byte, 0, samples*4)

	for i := 0; i < samples; i++ {
		t := float64(i) / float64(audioSampleRate)
		sample := float32(math.Sin(2 * math.Pi * beepFrequency * t))

		bits := math.Float32bits(sample)
		wave = append(wave, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}

	return wave
}

func (hal *HAL) waitForNextFrame() {
	time.Sleep(framePeriod)
}
