package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"

	"vulkan-engine/backend"
	"vulkan-engine/events"
	"vulkan-engine/geometry"
	"vulkan-engine/imagefile"
	"vulkan-engine/input"
	"vulkan-engine/models"
	"vulkan-engine/shaders"
	"vulkan-engine/textures"
)

func init() {
	// This is needed to arrange that main() runs on main thread.
	// See documentation for functions that are only allowed to be called
	// from the main thread.
	runtime.LockOSThread()

	flag.BoolVar(&args.debug, "debug", false, "Enable Vulkan validation layers")
	flag.IntVar(&args.width, "width", 1024, "Window width")
	flag.IntVar(&args.height, "height", 768, "Window height")
	flag.StringVar(&args.title, "title", "Vulkan Engine", "Window title")
	flag.StringVar(&args.shaders, "shaders", "",
		"Directory with compiled SPIR-V shaders. Uses the built-in ones when empty")
	flag.StringVar(&args.program, "program", shaders.DefaultProgram,
		"Name of the shader program")
	flag.StringVar(&args.texture, "texture", "", "Texture image. Uses a built-in one when empty")
	flag.StringVar(&args.model, "model", "", "Wavefront OBJ model. Draws a cube when empty")
	flag.StringVar(&args.logFile, "log", "", "Write the log into this file")
}

var args struct {
	debug   bool
	width   int
	height  int
	title   string
	shaders string
	program string
	texture string
	model   string
	logFile string
}

func main() {
	flag.Parse()
	os.Exit(run())
}

// run returns the exit code of the program. It is separate from main so the
// deferred calls run before the process exits.
func run() int {
	if args.logFile != "" {
		fh, err := os.Create(args.logFile)
		if err != nil {
			log.Printf("ERROR: opening log file: %s", err)
			return 1
		}
		defer fh.Close()
		log.SetOutput(fh)
	}

	app := &App{
		width:  args.width,
		height: args.height,
		title:  args.title,
	}
	if err := app.Run(); err != nil {
		log.Printf("ERROR: %s", err)
		return 1
	}

	return 0
}

// App is a window showing a single model which the user can fly around with
// the mouse and the W, A, S and D keys.
type App struct {
	width  int
	height int
	title  string

	window   *glfw.Window
	pump     *events.Pump
	renderer *backend.Backend
}

// Run runs the program until its window is closed.
func (a *App) Run() error {
	if err := a.initWindow(); err != nil {
		return fmt.Errorf("initWindow: %w", err)
	}
	defer a.cleanWindow()

	if err := a.initRenderer(); err != nil {
		if a.renderer != nil {
			a.renderer.Cleanup()
		}
		return fmt.Errorf("initRenderer: %w", err)
	}
	defer a.renderer.Cleanup()

	if err := a.mainLoop(); err != nil {
		return fmt.Errorf("mainLoop: %w", err)
	}

	return nil
}

func (a *App) initWindow() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	window, err := glfw.CreateWindow(a.width, a.height, a.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("creating window: %w", err)
	}
	window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)

	a.pump = events.NewPump()
	input.NewKeyboard(a.pump).Attach(window)
	input.NewMouse(a.pump).Attach(window)

	a.pump.Register(events.HandlerFunc(func(evt events.Event) {
		if key, ok := evt.(events.KeyEvent); ok && key.Key == events.KeyEscape {
			window.SetShouldClose(true)
		}
	}))

	a.window = window
	return nil
}

func (a *App) cleanWindow() {
	a.window.Destroy()
	glfw.Terminate()
}

func (a *App) initRenderer() error {
	pool, err := loadShaders(args.shaders)
	if err != nil {
		return fmt.Errorf("loading shaders: %w", err)
	}

	mesh, err := loadMesh(args.model)
	if err != nil {
		return fmt.Errorf("loading model: %w", err)
	}

	texture, err := loadTexture(args.texture)
	if err != nil {
		return fmt.Errorf("loading texture: %w", err)
	}

	cfg := backend.DefaultConfig()
	cfg.Debug = args.debug
	cfg.Logger = log.Default()
	cfg.WaitEvents = glfw.WaitEvents

	a.renderer = backend.New(a.window, pool, cfg)

	if err := a.renderer.BeginInit(a.title); err != nil {
		return fmt.Errorf("BeginInit: %w", err)
	}
	if err := a.renderer.LoadProgram(args.program); err != nil {
		return fmt.Errorf("LoadProgram: %w", err)
	}
	if err := a.renderer.LoadTextureImage(texture); err != nil {
		return fmt.Errorf("LoadTexture: %w", err)
	}
	if err := a.renderer.EndInit(); err != nil {
		return fmt.Errorf("EndInit: %w", err)
	}
	if err := a.renderer.LoadMesh(mesh); err != nil {
		return fmt.Errorf("LoadModel: %w", err)
	}

	a.pump.Register(a.renderer)
	a.window.SetFramebufferSizeCallback(a.frameBufferResizeCallback)
	a.window.SetCursorPos(a.renderer.Camera().Center())

	return nil
}

func (a *App) frameBufferResizeCallback(
	w *glfw.Window,
	width int,
	height int,
) {
	a.renderer.NotifyResized()
}

func (a *App) mainLoop() error {
	log.Printf("main loop!\n")

	for !a.window.ShouldClose() {
		glfw.PollEvents()

		if err := a.renderer.DrawFrame(); err != nil {
			return fmt.Errorf("error drawing a frame: %w", err)
		}
	}

	return nil
}

func loadMesh(path string) (geometry.Mesh, error) {
	if path == "" {
		return geometry.LoadOBJ(models.FS, models.DefaultModel)
	}

	fh, err := os.Open(path)
	if err != nil {
		return geometry.Mesh{}, err
	}
	defer fh.Close()

	return geometry.DecodeOBJ(fh)
}

func loadShaders(dir string) ([]shaders.Source, error) {
	if dir == "" {
		return shaders.Load(shaders.FS)
	}
	return shaders.LoadDir(dir)
}

func loadTexture(path string) (*imagefile.Image, error) {
	if path == "" {
		return imagefile.OpenFS(textures.FS, textures.DefaultTexture)
	}
	return imagefile.Open(path)
}
