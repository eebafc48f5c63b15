package fuzztests

import "testing"

const (
	maxFuzzInput = 1 << 16 // 64 KiB
	maxLogInput  = 200
)

// seedPrograms cover the syntax the engine types: generics, enums,
// abstracts, anonymous structures, closures, switches and regex literals.
var seedPrograms = []string{
	"class Main { static function main() { var x = 1 + 2; } }",
	`class Box<T> {
	public var value:T;
	public function new(v:T) { value = v; }
	public function map<R>(f:T -> R):Box<R> return new Box(f(value));
}`,
	`enum Option<T> { Some(v:T); None; }
class U {
	static function get(o:Option<Int>) {
		return switch (o) { case Some(v): v; case None: 0; }
	}
}`,
	`typedef Point = { x:Int, ?y:Float }
class P { static var origin:Point = { x: 0 }; }`,
	`enum abstract Color(Int) { var Red = 1; var Green = 2; }`,
	`abstract Meters(Float) from Float to Float {}`,
	`interface Shape { function area():Float; }
class Sq implements Shape { public function new() {} public function area() return 4.0; }`,
	`class R { static var re = ~/a+b*/gi; static var s = "a" + 1; }`,
	`class L { function f() { for (i in 0...10) { if (i > 3) break; } while (true) {} } }`,
	`class C { function f(?a:Int = 3, ...rest:String) { var g = (x) -> x * 2; return g(a); } }`,
	`class T { var a = [1, 2.5]; var m = ["k" => 1]; var n = null; var u = untyped x; }`,
	`class E extends Base { override function f() { super.f(); return cast(this, Base); } }`,
	"class Broken { function f() { var x = ; if ( } }",
	"\"unterminated",
	"/* comment",
	"class X { var s = 'a${b}c'; }",
}

func addSeeds(f *testing.F) {
	for _, s := range seedPrograms {
		f.Add([]byte(s))
	}
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		input = input[:maxFuzzInput]
	}
	return append([]byte(nil), input...)
}

// truncateForLog truncates input for logging purposes
func truncateForLog(input []byte) []byte {
	if len(input) <= maxLogInput {
		return input
	}
	return append(append([]byte(nil), input[:maxLogInput]...), "..."...)
}
